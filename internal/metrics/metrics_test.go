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

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCacheObserverCounts(t *testing.T) {
	mm := NewMetricsManager(context.Background())
	co := mm.CacheObserver()
	co.CacheHit("oracle")
	co.CacheHit("oracle")
	co.CacheMiss("oracle")
	co.CacheGenerationFailed("endpoint")

	assert.Equal(t, 2.0, testutil.ToFloat64(co.requests.WithLabelValues("oracle", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(co.requests.WithLabelValues("oracle", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(co.generationFailures.WithLabelValues("endpoint")))

	families, err := mm.Registry().Gather()
	assert.NoError(t, err)
	assert.Len(t, families, 2)
}
