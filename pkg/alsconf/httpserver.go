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

type HTTPServerConfig struct {
	Port                  *int    `json:"port"`
	Address               *string `json:"address"`
	ShutdownTimeout       *string `json:"shutdownTimeout"`
	DefaultRequestTimeout *string `json:"defaultRequestTimeout"`
	MaxRequestTimeout     *string `json:"maxRequestTimeout"`
	MaxRequestBodySize    *string `json:"maxRequestBodySize"`
}

var HTTPDefaults = &HTTPServerConfig{
	Address:               confutil.P("127.0.0.1"),
	ShutdownTimeout:       confutil.P("10s"),
	DefaultRequestTimeout: confutil.P("2m"),
	MaxRequestTimeout:     confutil.P("10m"),
	MaxRequestBodySize:    confutil.P("1Mb"),
}

type MetricsServerConfig struct {
	Enabled          *bool `json:"enabled"`
	HTTPServerConfig `json:",inline"`
}

var MetricsServerDefaults = &MetricsServerConfig{
	Enabled: confutil.P(false),
}

type HTTPClientConfig struct {
	HTTPHeaders       map[string]string `json:"httpHeaders"`
	RequestTimeout    *string           `json:"requestTimeout,omitempty"`
	ConnectionTimeout *string           `json:"connectionTimeout,omitempty"`
}

var DefaultHTTPConfig = &HTTPClientConfig{
	ConnectionTimeout: confutil.P("30s"),
	RequestTimeout:    confutil.P("30s"),
}
