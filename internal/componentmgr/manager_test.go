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

package componentmgr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(redisAddr string) *alsconf.ALSConfig {
	return &alsconf.ALSConfig{
		DB: alsconf.DBConfig{
			Type: "sqlite",
			SQLite: alsconf.SQLiteConfig{
				SQLDBConfig: alsconf.SQLDBConfig{
					DSN:           ":memory:",
					AutoMigrate:   confutil.P(true),
					MigrationsDir: "../../db/migrations/sqlite",
				},
			},
		},
		ProxyCache: alsconf.ProxyCacheConfig{
			Addresses: []string{redisAddr},
		},
		API: alsconf.HTTPServerConfig{
			Port: confutil.P(0),
		},
		MetricsServer: alsconf.MetricsServerConfig{
			Enabled: confutil.P(true),
			HTTPServerConfig: alsconf.HTTPServerConfig{
				Port: confutil.P(0),
			},
		},
		Startup: alsconf.StartupConfig{
			ProxyCacheConnectRetry: alsconf.RetryConfigWithMax{
				RetryConfig: alsconf.RetryConfig{
					InitialDelay: confutil.P("1ms"),
					MaxDelay:     confutil.P("1ms"),
				},
				MaxAttempts: confutil.P(1),
			},
		},
	}
}

func TestInitStartStopOK(t *testing.T) {
	mr := miniredis.RunT(t)
	cm := NewComponentManager(context.Background(), testConfig(mr.Addr())).(*componentManager)
	defer cm.Stop()

	require.NoError(t, cm.Init())
	assert.NotNil(t, cm.Persistence())
	assert.NotNil(t, cm.MetricsManager())
	assert.NotNil(t, cm.OracleManager())
	assert.NotNil(t, cm.EndpointManager())
	assert.NotNil(t, cm.ProxyDirectory())
	assert.NotNil(t, cm.Correlator())
	assert.NotNil(t, cm.Transport())
	assert.NotNil(t, cm.Discovery())
	assert.Contains(t, cm.healthChecks, "oracleRegistry")
	assert.Contains(t, cm.healthChecks, "proxyCache")

	require.NoError(t, cm.StartManagers())
	require.NoError(t, cm.CompleteStart())

	res, err := http.Get(fmt.Sprintf("http://%s/health", cm.apiServer.Addr()))
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode, string(body))

	names := make([]string, len(cm.started))
	for i, s := range cm.started {
		names[i] = s.name
	}
	assert.Equal(t, []string{
		"oracle_manager", "endpoint_manager", "proxy_directory", "correlator",
		"transport", "discovery", "api_server", "metrics_server",
	}, names)
}

func TestInitBadDBType(t *testing.T) {
	conf := testConfig("localhost:6379")
	conf.DB.Type = "wrong"
	cm := NewComponentManager(context.Background(), conf)
	defer cm.Stop()
	err := cm.Init()
	assert.Regexp(t, "AL010000.*AL010200", err)
}

func TestInitProxyCacheNoAddresses(t *testing.T) {
	conf := testConfig("")
	conf.ProxyCache.Addresses = []string{}
	cm := NewComponentManager(context.Background(), conf)
	defer cm.Stop()
	err := cm.Init()
	assert.Regexp(t, "AL010004.*AL010103", err)
}

func TestInitAPIServerMissingPort(t *testing.T) {
	mr := miniredis.RunT(t)
	conf := testConfig(mr.Addr())
	conf.API.Port = nil
	cm := NewComponentManager(context.Background(), conf)
	defer cm.Stop()
	err := cm.Init()
	assert.Regexp(t, "AL010009.*AL010106", err)
}

func TestStartProxyCacheUnreachable(t *testing.T) {
	cm := NewComponentManager(context.Background(), testConfig("127.0.0.1:1")).(*componentManager)
	defer cm.Stop()
	require.NoError(t, cm.Init())
	err := cm.StartManagers()
	assert.Regexp(t, "AL010005", err)
	// managers started before the failure are still stopped
	require.Len(t, cm.started, 2)
}
