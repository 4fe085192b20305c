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

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "als"

type Metrics interface {
	Registry() *prometheus.Registry
	// One observer shared by every cache instance, distinguished by the cache name label
	CacheObserver() *CacheObserver
}

type metricsManager struct {
	ctx      context.Context
	registry *prometheus.Registry
	caches   *CacheObserver
}

func NewMetricsManager(ctx context.Context) Metrics {
	registry := prometheus.NewRegistry()
	return &metricsManager{
		ctx:      ctx,
		registry: registry,
		caches:   newCacheObserver(registry),
	}
}

func (mm *metricsManager) Registry() *prometheus.Registry {
	return mm.registry
}

func (mm *metricsManager) CacheObserver() *CacheObserver {
	return mm.caches
}

type CacheObserver struct {
	requests           *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
}

func newCacheObserver(registry *prometheus.Registry) *CacheObserver {
	co := &CacheObserver{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_requests_total",
			Help: "Cache lookups by cache and result",
		}, []string{"cache", "result"}),
		generationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_generation_failures_total",
			Help: "Cache value generations that failed or timed out",
		}, []string{"cache"}),
	}
	registry.MustRegister(co.requests, co.generationFailures)
	return co
}

func (co *CacheObserver) CacheHit(name string) {
	co.requests.WithLabelValues(name, "hit").Inc()
}

func (co *CacheObserver) CacheMiss(name string) {
	co.requests.WithLabelValues(name, "miss").Inc()
}

func (co *CacheObserver) CacheGenerationFailed(name string) {
	co.generationFailures.WithLabelValues(name).Inc()
}
