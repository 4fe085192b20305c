// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package alstypes

import (
	"context"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
)

// OracleScope is the tuple an association is registered against. A party-scoped
// association carries ID, the sub-id, currency and type scopes leave it empty.
type OracleScope struct {
	PartyIdType PartyIdType `json:"partyIdType"`
	PartyID     string      `json:"partyId,omitempty"`
	SubID       string      `json:"partySubIdOrType,omitempty"`
	Currency    string      `json:"currency,omitempty"`
}

func (s OracleScope) String() string {
	return string(s.PartyIdType) + "|" + s.PartyID + "|" + s.SubID + "|" + s.Currency
}

// Scopes returns the distinct lookup tiers for a party, most specific first
func (p PartyIdentifier) Scopes() []OracleScope {
	candidates := []OracleScope{
		{PartyIdType: p.Type, PartyID: p.ID, SubID: p.SubID, Currency: p.Currency},
		{PartyIdType: p.Type, PartyID: p.ID, SubID: p.SubID},
		{PartyIdType: p.Type, SubID: p.SubID, Currency: p.Currency},
		{PartyIdType: p.Type, Currency: p.Currency},
		{PartyIdType: p.Type},
	}
	scopes := make([]OracleScope, 0, len(candidates))
	for _, c := range candidates {
		dup := false
		for _, s := range scopes {
			dup = dup || s == c
		}
		if !dup {
			scopes = append(scopes, c)
		}
	}
	return scopes
}

// PartyScope is the scope used for associations recorded against one specific party
func (p PartyIdentifier) PartyScope() OracleScope {
	return p.Scopes()[0]
}

type OracleAssociation struct {
	ID           uint64       `json:"id"`
	OracleScope  `json:",inline"`
	EndpointType EndpointType `json:"endpointType"`
	Value        string       `json:"value"` // the owning participant
	IsDefault    bool         `json:"isDefault"`
	IsActive     bool         `json:"isActive"`
	Speculative  bool         `json:"speculative"`
	CreatedBy    string       `json:"createdBy"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type NewOracleAssociation struct {
	OracleScope  `json:",inline"`
	EndpointType EndpointType `json:"endpointType"`
	Value        string       `json:"value"`
	IsDefault    bool         `json:"isDefault"`
	Speculative  bool         `json:"speculative"`
	CreatedBy    string       `json:"createdBy"`
}

func (na *NewOracleAssociation) Validate(ctx context.Context) error {
	if na.PartyIdType == "" {
		return i18n.NewError(ctx, msgs.MsgPartyIdTypeMissing)
	}
	if !supportedPartyIdTypes[na.PartyIdType] {
		return i18n.NewError(ctx, msgs.MsgPartyIdTypeUnsupported, na.PartyIdType)
	}
	if na.Currency != "" && !currencyRegex.MatchString(na.Currency) {
		return i18n.NewError(ctx, msgs.MsgCurrencyInvalid, na.Currency)
	}
	if na.Value == "" {
		return i18n.NewError(ctx, msgs.MsgFspIdMissing)
	}
	if na.EndpointType == "" {
		na.EndpointType = EndpointTypePartiesGet
	}
	return na.EndpointType.Validate(ctx)
}
