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

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
)

type EndpointType string

const (
	EndpointTypePartiesGet      EndpointType = "FSPIOP_CALLBACK_URL_PARTIES_GET"
	EndpointTypePartiesPut      EndpointType = "FSPIOP_CALLBACK_URL_PARTIES_PUT"
	EndpointTypePartiesPutError EndpointType = "FSPIOP_CALLBACK_URL_PARTIES_PUT_ERROR"
)

func (et EndpointType) Validate(ctx context.Context) error {
	switch et {
	case EndpointTypePartiesGet, EndpointTypePartiesPut, EndpointTypePartiesPutError:
		return nil
	default:
		return i18n.NewError(ctx, msgs.MsgEndpointTypeInvalid, et)
	}
}

type ParticipantEndpoint struct {
	FspID string       `json:"fspId"`
	Type  EndpointType `json:"type"`
	Value string       `json:"value"`
}

func (pe *ParticipantEndpoint) Validate(ctx context.Context) error {
	if pe.FspID == "" {
		return i18n.NewError(ctx, msgs.MsgFspIdMissing)
	}
	if pe.Value == "" {
		return i18n.NewError(ctx, msgs.MsgEndpointValueMissing)
	}
	return pe.Type.Validate(ctx)
}

type ProxyMapping struct {
	FspID   string `json:"fspId"`
	ProxyID string `json:"proxyId"`
}

func (pm *ProxyMapping) Validate(ctx context.Context) error {
	if pm.FspID == "" {
		return i18n.NewError(ctx, msgs.MsgFspIdMissing)
	}
	if pm.ProxyID == "" {
		return i18n.NewError(ctx, msgs.MsgProxyIdMissing)
	}
	if pm.ProxyID == pm.FspID {
		return i18n.NewError(ctx, msgs.MsgProxyMappingSelfReference, pm.FspID)
	}
	return nil
}
