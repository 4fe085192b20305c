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

package metrics

import (
	"context"
	"testing"

	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDiscoveryMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := InitMetrics(context.Background(), registry).(*discoveryMetrics)

	m.IncStarted()
	m.IncStarted()
	m.IncTerminal(alstypes.DiscoveryStateSucceeded)
	m.IncProxyRoute()
	m.IncCallbackDiscarded("terminal")
	m.IncDeliveryFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.started))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.terminal.WithLabelValues("SUCCEEDED")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.terminal.WithLabelValues("FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.proxyRoutes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callbackDiscarded.WithLabelValues("terminal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveryFailed))

	count, err := testutil.GatherAndCount(registry, "als_discovery_started_total", "als_discovery_terminal_total")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}
