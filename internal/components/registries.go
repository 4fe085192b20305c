/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package components

import (
	"context"

	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
)

// OracleManager owns the registry of which participant is authoritative for a party
type OracleManager interface {
	ManagerLifecycle
	// Most specific active association for the party, or an error with MsgOracleAssociationNotFound
	FindAssociation(ctx context.Context, party alstypes.PartyIdentifier) (*alstypes.OracleAssociation, error)
	CreateAssociation(ctx context.Context, na *alstypes.NewOracleAssociation) (*alstypes.OracleAssociation, error)
	// Soft-deletes the active party-scoped associations for the party that point to fspID
	DeactivateAssociation(ctx context.Context, party alstypes.PartyIdentifier, fspID string) error
	// Clears the speculative flag of the active party-scoped associations for the party that point to fspID
	ConfirmAssociation(ctx context.Context, party alstypes.PartyIdentifier, fspID string) error
	ListAssociations(ctx context.Context, partyIdType alstypes.PartyIdType) ([]*alstypes.OracleAssociation, error)
	// Administrative soft-delete of any association by id
	RemoveAssociation(ctx context.Context, id uint64) error
}

type EndpointManager interface {
	ManagerLifecycle
	// The raw (possibly templated) endpoint value, or an error with MsgEndpointNotFound
	ResolveEndpoint(ctx context.Context, fspID string, endpointType alstypes.EndpointType) (string, error)
	// The endpoint with party placeholders substituted
	RenderEndpoint(ctx context.Context, fspID string, endpointType alstypes.EndpointType, party alstypes.PartyIdentifier) (string, error)
	UpsertEndpoint(ctx context.Context, pe *alstypes.ParticipantEndpoint) error
	ListEndpoints(ctx context.Context, fspID string) ([]*alstypes.ParticipantEndpoint, error)
}

type ProxyDirectory interface {
	ManagerLifecycle
	// The proxy fronting fspID, or an error with MsgProxyNotFound
	ResolveProxy(ctx context.Context, fspID string) (string, error)
	RegisterMapping(ctx context.Context, pm *alstypes.ProxyMapping) error
	RemoveMapping(ctx context.Context, fspID string) error
	// Distinct proxy identifiers, sorted
	ListProxies(ctx context.Context) ([]string, error)
}
