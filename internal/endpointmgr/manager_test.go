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

package endpointmgr

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/metrics"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/persistence"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/persistence/mockpersistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testComponents struct {
	p  persistence.Persistence
	mm metrics.Metrics
}

func (tc *testComponents) Persistence() persistence.Persistence { return tc.p }
func (tc *testComponents) MetricsManager() metrics.Metrics     { return tc.mm }

func newTestEndpointManager(t *testing.T) (context.Context, *endpointManager, func()) {
	ctx := context.Background()
	p, pDone, err := persistence.NewUnitTestPersistence(ctx)
	require.NoError(t, err)

	em := NewEndpointManager(ctx, &alsconf.CacheConfig{}).(*endpointManager)
	_, err = em.PreInit(&testComponents{p: p, mm: metrics.NewMetricsManager(ctx)})
	require.NoError(t, err)
	require.NoError(t, em.PostInit(nil))
	require.NoError(t, em.Start())
	return ctx, em, func() {
		em.Stop()
		pDone()
	}
}

func TestEndpointTTLLongerThanOracle(t *testing.T) {
	_, em, done := newTestEndpointManager(t)
	defer done()
	assert.Greater(t, em.endpointCache.TTL(), time.Minute)
}

func TestUpsertResolveAndInvalidate(t *testing.T) {
	ctx, em, done := newTestEndpointManager(t)
	defer done()

	_, err := em.ResolveEndpoint(ctx, "DFSPA", alstypes.EndpointTypePartiesGet)
	assert.Regexp(t, "AL010600", err)
	assert.True(t, msgs.Is(err, msgs.MsgEndpointNotFound))

	require.NoError(t, em.UpsertEndpoint(ctx, &alstypes.ParticipantEndpoint{
		FspID: "DFSPA", Type: alstypes.EndpointTypePartiesGet, Value: "http://dfspa.example/parties/{{partyIdType}}/{{partyIdentifier}}",
	}))
	v, err := em.ResolveEndpoint(ctx, "DFSPA", alstypes.EndpointTypePartiesGet)
	require.NoError(t, err)
	assert.Equal(t, "http://dfspa.example/parties/{{partyIdType}}/{{partyIdentifier}}", v)

	cached, ok := em.endpointCache.Peek(endpointKey{fspID: "DFSPA", endpointType: alstypes.EndpointTypePartiesGet})
	assert.True(t, ok)
	assert.Equal(t, v, cached)

	require.NoError(t, em.UpsertEndpoint(ctx, &alstypes.ParticipantEndpoint{
		FspID: "DFSPA", Type: alstypes.EndpointTypePartiesGet, Value: "http://dfspa2.example",
	}))
	_, ok = em.endpointCache.Peek(endpointKey{fspID: "DFSPA", endpointType: alstypes.EndpointTypePartiesGet})
	assert.False(t, ok)
	v, err = em.ResolveEndpoint(ctx, "DFSPA", alstypes.EndpointTypePartiesGet)
	require.NoError(t, err)
	assert.Equal(t, "http://dfspa2.example", v)

	require.NoError(t, em.UpsertEndpoint(ctx, &alstypes.ParticipantEndpoint{
		FspID: "DFSPA", Type: alstypes.EndpointTypePartiesPut, Value: "http://dfspa2.example/put",
	}))
	list, err := em.ListEndpoints(ctx, "DFSPA")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, alstypes.EndpointTypePartiesGet, list[0].Type)
}

func TestRenderEndpoint(t *testing.T) {
	ctx, em, done := newTestEndpointManager(t)
	defer done()

	require.NoError(t, em.UpsertEndpoint(ctx, &alstypes.ParticipantEndpoint{
		FspID: "DFSPA", Type: alstypes.EndpointTypePartiesPut, Value: "http://dfspa.example/parties/{{partyIdType}}/{{partyIdentifier}}/{{partySubIdOrType}}",
	}))

	u, err := em.RenderEndpoint(ctx, "DFSPA", alstypes.EndpointTypePartiesPut, alstypes.PartyIdentifier{Type: alstypes.PartyIdTypeMSISDN, ID: "123", SubID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "http://dfspa.example/parties/MSISDN/123/s1", u)

	u, err = em.RenderEndpoint(ctx, "DFSPA", alstypes.EndpointTypePartiesPut, alstypes.PartyIdentifier{Type: alstypes.PartyIdTypeEmail, ID: "a b"})
	require.NoError(t, err)
	assert.Equal(t, "http://dfspa.example/parties/EMAIL/a%20b", u)

	require.NoError(t, em.UpsertEndpoint(ctx, &alstypes.ParticipantEndpoint{
		FspID: "BAD", Type: alstypes.EndpointTypePartiesPut, Value: "not a url",
	}))
	_, err = em.RenderEndpoint(ctx, "BAD", alstypes.EndpointTypePartiesPut, alstypes.PartyIdentifier{Type: alstypes.PartyIdTypeMSISDN, ID: "1"})
	assert.Regexp(t, "AL010803", err)

	_, err = em.RenderEndpoint(ctx, "NONE", alstypes.EndpointTypePartiesPut, alstypes.PartyIdentifier{Type: alstypes.PartyIdTypeMSISDN, ID: "1"})
	assert.Regexp(t, "AL010600", err)
}

func TestRenderEndpointTemplateFunctions(t *testing.T) {
	ctx, em, done := newTestEndpointManager(t)
	defer done()

	require.NoError(t, em.UpsertEndpoint(ctx, &alstypes.ParticipantEndpoint{
		FspID: "DFSPA", Type: alstypes.EndpointTypePartiesGet, Value: "http://dfspa.example/{{partyIdType | lower}}/{{partyIdentifier}}",
	}))
	u, err := em.RenderEndpoint(ctx, "DFSPA", alstypes.EndpointTypePartiesGet, alstypes.PartyIdentifier{Type: alstypes.PartyIdTypeMSISDN, ID: "123"})
	require.NoError(t, err)
	assert.Equal(t, "http://dfspa.example/msisdn/123", u)

	require.NoError(t, em.UpsertEndpoint(ctx, &alstypes.ParticipantEndpoint{
		FspID: "DFSPB", Type: alstypes.EndpointTypePartiesGet, Value: "http://dfspb.example/{{partyIdentifier",
	}))
	_, err = em.RenderEndpoint(ctx, "DFSPB", alstypes.EndpointTypePartiesGet, alstypes.PartyIdentifier{Type: alstypes.PartyIdTypeMSISDN, ID: "123"})
	assert.Regexp(t, "AL010803", err)
}

func TestRenderEndpointCannotReadEnvironment(t *testing.T) {
	t.Setenv("ALS_DB_PASSWORD", "s3cret")
	party := alstypes.PartyIdentifier{Type: alstypes.PartyIdTypeMSISDN, ID: "123"}

	for _, tmpl := range []string{
		`http://dfspa.example/{{env "ALS_DB_PASSWORD"}}`,
		`http://dfspa.example/{{expandenv "$ALS_DB_PASSWORD"}}`,
	} {
		u, err := renderTemplate(tmpl, party)
		assert.Regexp(t, "not defined", err)
		assert.NotContains(t, u, "s3cret")
	}
}

func TestResolveValidation(t *testing.T) {
	ctx, em, done := newTestEndpointManager(t)
	defer done()

	_, err := em.ResolveEndpoint(ctx, "", alstypes.EndpointTypePartiesGet)
	assert.Regexp(t, "AL010407", err)
	_, err = em.ResolveEndpoint(ctx, "DFSPA", "OTHER")
	assert.Regexp(t, "AL010406", err)
	assert.Regexp(t, "AL010408", em.UpsertEndpoint(ctx, &alstypes.ParticipantEndpoint{FspID: "a", Type: alstypes.EndpointTypePartiesGet}))
}

func TestEndpointRegistryUnavailable(t *testing.T) {
	ctx := context.Background()
	mp, err := mockpersistence.NewSQLMockProvider()
	require.NoError(t, err)

	em := NewEndpointManager(ctx, &alsconf.CacheConfig{}).(*endpointManager)
	_, err = em.PreInit(&testComponents{p: mp.P, mm: metrics.NewMetricsManager(ctx)})
	require.NoError(t, err)

	mp.Mock.ExpectQuery("SELECT.*participant_endpoints").WillReturnError(fmt.Errorf("pop"))
	_, err = em.ResolveEndpoint(ctx, "DFSPA", alstypes.EndpointTypePartiesGet)
	assert.Regexp(t, "AL010601.*pop", err)

	mp.Mock.ExpectQuery("SELECT.*participant_endpoints").WillReturnError(fmt.Errorf("pop"))
	_, err = em.ListEndpoints(ctx, "DFSPA")
	assert.Regexp(t, "AL010601", err)
}

var _ components.EndpointManager = &endpointManager{}
