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
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartyIdentifierValidate(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, PartyIdentifier{Type: PartyIdTypeMSISDN, ID: "123456789"}.Validate(ctx))
	require.NoError(t, PartyIdentifier{Type: PartyIdTypeIBAN, ID: "GB33", SubID: "x", Currency: "EUR"}.Validate(ctx))

	err := PartyIdentifier{ID: "123"}.Validate(ctx)
	assert.Regexp(t, "AL010401", err)
	err = PartyIdentifier{Type: "WRONG", ID: "123"}.Validate(ctx)
	assert.Regexp(t, "AL010403.*WRONG", err)
	err = PartyIdentifier{Type: PartyIdTypeMSISDN, ID: "  "}.Validate(ctx)
	assert.Regexp(t, "AL010402", err)
	err = PartyIdentifier{Type: PartyIdTypeMSISDN, ID: "1", Currency: "usd"}.Validate(ctx)
	assert.Regexp(t, "AL010404", err)
	err = PartyIdentifier{Type: PartyIdTypeMSISDN, ID: strings.Repeat("1", 129)}.Validate(ctx)
	assert.Regexp(t, "AL010413", err)
}

func TestPartyIdentifierScopes(t *testing.T) {
	p := PartyIdentifier{Type: PartyIdTypeMSISDN, ID: "123", SubID: "s", Currency: "USD"}
	assert.Equal(t, "MSISDN/123/s@USD", p.String())
	assert.Equal(t, []OracleScope{
		{PartyIdType: PartyIdTypeMSISDN, PartyID: "123", SubID: "s", Currency: "USD"},
		{PartyIdType: PartyIdTypeMSISDN, PartyID: "123", SubID: "s"},
		{PartyIdType: PartyIdTypeMSISDN, SubID: "s", Currency: "USD"},
		{PartyIdType: PartyIdTypeMSISDN, Currency: "USD"},
		{PartyIdType: PartyIdTypeMSISDN},
	}, p.Scopes())
	assert.Equal(t, []OracleScope{
		{PartyIdType: PartyIdTypeMSISDN, PartyID: "123", SubID: "s"},
		{PartyIdType: PartyIdTypeMSISDN, SubID: "s"},
		{PartyIdType: PartyIdTypeMSISDN},
	}, PartyIdentifier{Type: PartyIdTypeMSISDN, ID: "123", SubID: "s"}.Scopes())
	assert.Equal(t, []OracleScope{
		{PartyIdType: PartyIdTypeMSISDN, PartyID: "123"},
		{PartyIdType: PartyIdTypeMSISDN},
	}, PartyIdentifier{Type: PartyIdTypeMSISDN, ID: "123"}.Scopes())
	assert.Equal(t, "MSISDN|123|s|USD", p.PartyScope().String())
	assert.Equal(t, "MSISDN/123", PartyIdentifier{Type: PartyIdTypeMSISDN, ID: "123"}.String())
}

func TestNewOracleAssociationValidate(t *testing.T) {
	ctx := context.Background()

	na := &NewOracleAssociation{OracleScope: OracleScope{PartyIdType: PartyIdTypeMSISDN}, Value: "DFSPA"}
	require.NoError(t, na.Validate(ctx))
	assert.Equal(t, EndpointTypePartiesGet, na.EndpointType)

	assert.Regexp(t, "AL010401", (&NewOracleAssociation{Value: "x"}).Validate(ctx))
	assert.Regexp(t, "AL010403", (&NewOracleAssociation{OracleScope: OracleScope{PartyIdType: "BAD"}, Value: "x"}).Validate(ctx))
	require.NoError(t, (&NewOracleAssociation{OracleScope: OracleScope{PartyIdType: PartyIdTypeMSISDN, SubID: "s", Currency: "USD"}, Value: "x"}).Validate(ctx))
	assert.Regexp(t, "AL010404", (&NewOracleAssociation{OracleScope: OracleScope{PartyIdType: PartyIdTypeMSISDN, Currency: "XX"}, Value: "x"}).Validate(ctx))
	assert.Regexp(t, "AL010407", (&NewOracleAssociation{OracleScope: OracleScope{PartyIdType: PartyIdTypeMSISDN}}).Validate(ctx))
	assert.Regexp(t, "AL010406", (&NewOracleAssociation{OracleScope: OracleScope{PartyIdType: PartyIdTypeMSISDN}, Value: "x", EndpointType: "nope"}).Validate(ctx))
}

func TestOracleAssociationJSONFlattensScope(t *testing.T) {
	b, err := json.Marshal(&OracleAssociation{OracleScope: OracleScope{PartyIdType: PartyIdTypeEmail, Currency: "USD"}, Value: "DFSPA"})
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "EMAIL", m["partyIdType"])
	assert.Equal(t, "USD", m["currency"])
	assert.NotContains(t, m, "partyId")
}

func TestEndpointAndProxyValidate(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, (&ParticipantEndpoint{FspID: "a", Type: EndpointTypePartiesPut, Value: "http://x"}).Validate(ctx))
	assert.Regexp(t, "AL010407", (&ParticipantEndpoint{Type: EndpointTypePartiesPut, Value: "v"}).Validate(ctx))
	assert.Regexp(t, "AL010408", (&ParticipantEndpoint{FspID: "a", Type: EndpointTypePartiesPut}).Validate(ctx))
	assert.Regexp(t, "AL010406", (&ParticipantEndpoint{FspID: "a", Type: "x", Value: "v"}).Validate(ctx))

	require.NoError(t, (&ProxyMapping{FspID: "DFSPA", ProxyID: "HUB-X"}).Validate(ctx))
	assert.Regexp(t, "AL010407", (&ProxyMapping{ProxyID: "HUB-X"}).Validate(ctx))
	assert.Regexp(t, "AL010411", (&ProxyMapping{FspID: "DFSPA"}).Validate(ctx))
	assert.Regexp(t, "AL010420", (&ProxyMapping{FspID: "HUB-X", ProxyID: "HUB-X"}).Validate(ctx))
}

func TestDiscoveryStateTerminal(t *testing.T) {
	for _, s := range []DiscoveryState{DiscoveryStateSucceeded, DiscoveryStateFailed, DiscoveryStateUnresolved, DiscoveryStateTimedOut} {
		assert.True(t, s.IsTerminal(), s)
	}
	for _, s := range []DiscoveryState{DiscoveryStateInitiated, DiscoveryStateOracleLookup, DiscoveryStateForwarded,
		DiscoveryStateAwaitingCallback, DiscoveryStateProxyRoute, DiscoveryStateErrored} {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestErrorInformationFor(t *testing.T) {
	ctx := context.Background()
	for key, code := range map[i18n.ErrorMessageKey]string{
		msgs.MsgDiscoveryTimedOut:         ErrorCodeTimeout,
		msgs.MsgCacheGenerationTimeout:    ErrorCodeTimeout,
		msgs.MsgOracleAssociationNotFound: ErrorCodePartyNotFound,
		msgs.MsgDiscoveryUnresolved:       ErrorCodeGenericPartyNotFound,
		msgs.MsgEndpointNotFound:          ErrorCodeGenericPartyNotFound,
		msgs.MsgPartyIdTypeMissing:        ErrorCodeValidation,
		msgs.MsgSourceMissing:             ErrorCodeValidation,
		msgs.MsgCallbackSourceMismatch:    ErrorCodeValidation,
		msgs.MsgOracleRegistryUnavailable: ErrorCodeServiceUnavailable,
		msgs.MsgForwardFailed:             ErrorCodeServiceUnavailable,
	} {
		ei := ErrorInformationFor(i18n.NewError(ctx, key, "a", "b"))
		assert.Equal(t, code, ei.ErrorCode, key)
		assert.Contains(t, ei.ErrorDescription, string(key))
	}
	assert.Equal(t, ErrorCodeServiceUnavailable, ErrorInformationFor(errors.New("plain")).ErrorCode)
}

func TestDiscoveryRequestClone(t *testing.T) {
	dr := &DiscoveryRequest{
		CorrelationID:  "c1",
		VisitedProxies: []string{"PROXY1"},
		Transitions:    []DiscoveryState{DiscoveryStateInitiated},
	}
	c := dr.Clone()
	c.VisitedProxies = append(c.VisitedProxies, "PROXY2")
	c.Transitions[0] = DiscoveryStateFailed
	assert.Equal(t, []string{"PROXY1"}, dr.VisitedProxies)
	assert.Equal(t, DiscoveryStateInitiated, dr.Transitions[0])
	assert.True(t, c.HasVisited("PROXY2"))
	assert.False(t, dr.HasVisited("PROXY2"))
	assert.True(t, dr.Reached(DiscoveryStateInitiated))
	assert.False(t, dr.Reached(DiscoveryStateForwarded))

	empty := (&DiscoveryRequest{}).Clone()
	assert.NotNil(t, empty.VisitedProxies)
}
