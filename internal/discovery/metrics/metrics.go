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

	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/prometheus/client_golang/prometheus"
)

type DiscoveryMetrics interface {
	IncStarted()
	IncTerminal(state alstypes.DiscoveryState)
	IncProxyRoute()
	IncCallbackDiscarded(reason string)
	IncDeliveryFailed()
}

var METRICS_NAMESPACE = "als"
var METRICS_SUBSYSTEM = "discovery"

type discoveryMetrics struct {
	started           prometheus.Counter
	terminal          *prometheus.CounterVec
	proxyRoutes       prometheus.Counter
	callbackDiscarded *prometheus.CounterVec
	deliveryFailed    prometheus.Counter
}

func InitMetrics(ctx context.Context, registry *prometheus.Registry) DiscoveryMetrics {
	metrics := &discoveryMetrics{}

	metrics.started = prometheus.NewCounter(prometheus.CounterOpts{Name: "started_total",
		Help: "Discovery requests accepted", Namespace: METRICS_NAMESPACE, Subsystem: METRICS_SUBSYSTEM})
	metrics.terminal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "terminal_total",
		Help: "Discovery requests finished, by terminal state", Namespace: METRICS_NAMESPACE, Subsystem: METRICS_SUBSYSTEM}, []string{"state"})
	metrics.proxyRoutes = prometheus.NewCounter(prometheus.CounterOpts{Name: "proxy_routes_total",
		Help: "Discovery requests routed via a proxy", Namespace: METRICS_NAMESPACE, Subsystem: METRICS_SUBSYSTEM})
	metrics.callbackDiscarded = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "callbacks_discarded_total",
		Help: "Late, duplicate or unmatched callbacks", Namespace: METRICS_NAMESPACE, Subsystem: METRICS_SUBSYSTEM}, []string{"reason"})
	metrics.deliveryFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "delivery_failures_total",
		Help: "Results or errors that could not be delivered to the source", Namespace: METRICS_NAMESPACE, Subsystem: METRICS_SUBSYSTEM})

	registry.MustRegister(metrics.started, metrics.terminal, metrics.proxyRoutes, metrics.callbackDiscarded, metrics.deliveryFailed)
	return metrics
}

func (dm *discoveryMetrics) IncStarted() {
	dm.started.Inc()
}

func (dm *discoveryMetrics) IncTerminal(state alstypes.DiscoveryState) {
	dm.terminal.With(prometheus.Labels{"state": string(state)}).Inc()
}

func (dm *discoveryMetrics) IncProxyRoute() {
	dm.proxyRoutes.Inc()
}

func (dm *discoveryMetrics) IncCallbackDiscarded(reason string) {
	dm.callbackDiscarded.With(prometheus.Labels{"reason": reason}).Inc()
}

func (dm *discoveryMetrics) IncDeliveryFailed() {
	dm.deliveryFailed.Inc()
}
