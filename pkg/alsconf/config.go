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

import (
	"context"
	"os"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"

	"sigs.k8s.io/yaml" // because it supports JSON tags
)

type ALSConfig struct {
	Log           LogConfig           `json:"log"`
	DB            DBConfig            `json:"db"`
	OracleCache   CacheConfig         `json:"oracleCache"`
	EndpointCache CacheConfig         `json:"endpointCache"`
	ProxyCache    ProxyCacheConfig    `json:"proxyCache"`
	Discovery     DiscoveryConfig     `json:"discovery"`
	Transport     HTTPClientConfig    `json:"transport"`
	API           HTTPServerConfig    `json:"api"`
	MetricsServer MetricsServerConfig `json:"metricsServer"`
	Startup       StartupConfig       `json:"startup"`
}

type StartupConfig struct {
	// retry for connecting to the proxy cache cluster on startup
	ProxyCacheConnectRetry RetryConfigWithMax `json:"proxyCacheConnectRetry"`
}

var StartupConfigDefaults = StartupConfig{
	ProxyCacheConnectRetry: RetryConfigWithMax{
		RetryConfig: GenericRetryDefaults.RetryConfig,
		MaxAttempts: GenericRetryDefaults.MaxAttempts,
	},
}

func ReadAndParseYAMLFile(ctx context.Context, filePath string, config interface{}) error {
	// Note we use the YAML parser (like Kubernetes) that handles json tags
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return i18n.NewError(ctx, msgs.MsgConfigFileMissing, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileReadError, filePath, err.Error())
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileParseError, err.Error())
	}

	return nil
}
