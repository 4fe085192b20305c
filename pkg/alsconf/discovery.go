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

package alsconf

import "github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"

type DiscoveryConfig struct {
	// deadline for a discovery request, from intake to terminal state
	Deadline *string `json:"deadline"`
	// upper bound on proxies visited by one request, zero means bounded only by the known proxies
	MaxProxyHops *int `json:"maxProxyHops"`
	// the name this switch uses as FSPIOP-Source on synthesized errors
	HubName *string `json:"hubName"`
	// retry of result/error delivery to the requesting participant
	DeliveryRetry RetryConfigWithMax `json:"deliveryRetry"`
	// finished discoveries stay queryable for a while after leaving the correlator
	Finished CacheConfig `json:"finished"`
}

var DiscoveryDefaults = &DiscoveryConfig{
	Deadline:     confutil.P("30s"),
	MaxProxyHops: confutil.P(0),
	HubName:      confutil.P("Hub"),
	DeliveryRetry: RetryConfigWithMax{
		RetryConfig: RetryConfig{
			InitialDelay: confutil.P("100ms"),
			MaxDelay:     confutil.P("2s"),
			Factor:       confutil.P(2.0),
		},
		MaxAttempts: confutil.P(3),
	},
	Finished: CacheConfig{
		Capacity:        confutil.P(1000),
		TTL:             confutil.P("5m"),
		GenerateTimeout: confutil.P("1s"),
	},
}
