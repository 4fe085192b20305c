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

type CacheConfig struct {
	// maximum number of entries, least-recently-used eviction beyond this
	Capacity *int `json:"capacity"`
	// lifetime of an entry from the point it was stored
	TTL *string `json:"ttl"`
	// maximum wait for a miss-triggered generation before failing all waiting callers
	GenerateTimeout *string `json:"generateTimeout"`
}

var OracleCacheDefaults = &CacheConfig{
	Capacity:        confutil.P(1000),
	TTL:             confutil.P("60s"),
	GenerateTimeout: confutil.P("5s"),
}

// Endpoint URLs change far less often than active oracle associations
var EndpointCacheDefaults = &CacheConfig{
	Capacity:        confutil.P(1000),
	TTL:             confutil.P("10m"),
	GenerateTimeout: confutil.P("5s"),
}

type ProxyCacheConfig struct {
	// one address for a single node, several for a cluster
	Addresses   []string `json:"addresses"`
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	DB          *int     `json:"db"`
	KeyPrefix   *string  `json:"keyPrefix"`
	TTL         *string  `json:"ttl"`
	DialTimeout *string  `json:"dialTimeout"`
}

var ProxyCacheDefaults = &ProxyCacheConfig{
	Addresses:   []string{"localhost:6379"},
	DB:          confutil.P(0),
	KeyPrefix:   confutil.P("als:"),
	TTL:         confutil.P("1h"),
	DialTimeout: confutil.P("5s"),
}
