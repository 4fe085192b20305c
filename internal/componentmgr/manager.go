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

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/api"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/correlator"
	"github.com/mojaloop/account-lookup-service-sub002/internal/discovery"
	"github.com/mojaloop/account-lookup-service-sub002/internal/endpointmgr"
	"github.com/mojaloop/account-lookup-service-sub002/internal/metrics"
	"github.com/mojaloop/account-lookup-service-sub002/internal/metricsserver"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/internal/oraclemgr"
	"github.com/mojaloop/account-lookup-service-sub002/internal/proxydirectory"
	"github.com/mojaloop/account-lookup-service-sub002/internal/router"
	"github.com/mojaloop/account-lookup-service-sub002/internal/transport"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/persistence"
)

type ComponentManager interface {
	components.AllComponents
	Init() error
	StartManagers() error
	CompleteStart() error
	Stop()
}

type componentManager struct {
	bgCtx context.Context
	conf  *alsconf.ALSConfig
	// pre-init
	persistence    persistence.Persistence
	metricsManager metrics.Metrics
	apiServer      router.Router
	metricsServer  metricsserver.MetricsServer
	// managers
	oracleManager   components.OracleManager
	endpointManager components.EndpointManager
	proxyDirectory  components.ProxyDirectory
	correlator      components.Correlator
	transport       components.Transport
	discovery       components.Discovery
	// init to start tracking
	healthChecks map[string]components.HealthCheck
	// keep track of everything we started, so we stop in reverse order
	started []namedStoppable
	opened  []namedCloseable
}

type stoppable interface {
	Stop()
}

type closeable interface {
	Close()
}

type namedStoppable struct {
	name string
	c    stoppable
}

type namedCloseable struct {
	name string
	c    closeable
}

type lifecycleStep struct {
	name     string
	m        components.ManagerLifecycle
	initMsg  i18n.ErrorMessageKey
	startMsg i18n.ErrorMessageKey
}

func NewComponentManager(bgCtx context.Context, conf *alsconf.ALSConfig) ComponentManager {
	log.InitConfig(&conf.Log)
	return &componentManager{
		bgCtx:        bgCtx,
		conf:         conf,
		healthChecks: make(map[string]components.HealthCheck),
	}
}

// managers in dependency order: registries first, the orchestrator that drives them last
func (cm *componentManager) lifecycle() []*lifecycleStep {
	return []*lifecycleStep{
		{name: "oracle_manager", m: cm.oracleManager, initMsg: msgs.MsgComponentOracleMgrInitError, startMsg: msgs.MsgComponentOracleMgrStartError},
		{name: "endpoint_manager", m: cm.endpointManager, initMsg: msgs.MsgComponentEndpointMgrInitError, startMsg: msgs.MsgComponentEndpointMgrStartError},
		{name: "proxy_directory", m: cm.proxyDirectory, initMsg: msgs.MsgComponentProxyDirectoryInitError, startMsg: msgs.MsgComponentProxyDirectoryStartError},
		{name: "correlator", m: cm.correlator, initMsg: msgs.MsgComponentCorrelatorInitError, startMsg: msgs.MsgComponentCorrelatorStartError},
		{name: "transport", m: cm.transport, initMsg: msgs.MsgComponentTransportInitError, startMsg: msgs.MsgComponentTransportStartError},
		{name: "discovery", m: cm.discovery, initMsg: msgs.MsgComponentDiscoveryInitError, startMsg: msgs.MsgComponentDiscoveryStartError},
	}
}

func (cm *componentManager) Init() (err error) {
	cm.persistence, err = persistence.NewPersistence(cm.bgCtx, &cm.conf.DB)
	err = cm.addIfOpened("database", cm.persistence, err, msgs.MsgComponentDBInitError)

	if err == nil {
		cm.metricsManager = metrics.NewMetricsManager(cm.bgCtx)
		cm.metricsServer, err = metricsserver.NewMetricsServer(cm.bgCtx, cm.metricsManager.Registry(), &cm.conf.MetricsServer)
		err = cm.wrapIfErr(err, msgs.MsgComponentMetricsServerInitError)
	}

	if err == nil {
		cm.oracleManager = oraclemgr.NewOracleManager(cm.bgCtx, &cm.conf.OracleCache)
		cm.endpointManager = endpointmgr.NewEndpointManager(cm.bgCtx, &cm.conf.EndpointCache)
		cm.proxyDirectory = proxydirectory.NewProxyDirectory(cm.bgCtx, &cm.conf.ProxyCache, &cm.conf.Startup.ProxyCacheConnectRetry)
		cm.correlator = correlator.NewCorrelator(cm.bgCtx)
		cm.transport = transport.NewTransport(cm.bgCtx, &cm.conf.Transport)
		cm.discovery = discovery.NewDiscoveryManager(cm.bgCtx, &cm.conf.Discovery)
	}

	// pre-init the managers
	for _, step := range cm.lifecycle() {
		if err == nil {
			var initResult *components.ManagerInitResult
			initResult, err = step.m.PreInit(cm)
			err = cm.wrapIfErr(err, step.initMsg)
			if err == nil && initResult != nil {
				for name, check := range initResult.HealthChecks {
					cm.healthChecks[name] = check
				}
			}
		}
	}

	// post-init the managers
	for _, step := range cm.lifecycle() {
		if err == nil {
			err = step.m.PostInit(cm)
			err = cm.wrapIfErr(err, step.initMsg)
		}
	}

	if err == nil {
		cm.apiServer, err = api.NewServer(cm.bgCtx, &cm.conf.API, cm, cm.healthChecks)
		err = cm.wrapIfErr(err, msgs.MsgComponentAPIServerInitError)
	}
	return err
}

func (cm *componentManager) StartManagers() (err error) {
	for _, step := range cm.lifecycle() {
		if err == nil {
			err = step.m.Start()
			err = cm.addIfStarted(step.name, step.m, err, step.startMsg)
		}
	}
	return err
}

func (cm *componentManager) CompleteStart() error {
	// start the API server last, once everything it routes to is running
	err := cm.apiServer.Start()
	err = cm.addIfStarted("api_server", cm.apiServer, err, msgs.MsgComponentAPIServerStartError)
	if err == nil {
		log.L(cm.bgCtx).Infof("API endpoint http=%s", cm.apiServer.Addr())
		err = cm.metricsServer.Start()
		err = cm.addIfStarted("metrics_server", cm.metricsServer, err, msgs.MsgComponentMetricsServerStartError)
	}
	if err == nil {
		log.L(cm.bgCtx).Infof("Startup complete")
	}
	return err
}

func (cm *componentManager) wrapIfErr(err error, failMsg i18n.ErrorMessageKey, inserts ...any) error {
	if err != nil {
		return i18n.WrapError(cm.bgCtx, err, failMsg, inserts...)
	}
	return nil
}

func (cm *componentManager) addIfStarted(desc string, c stoppable, err error, failMsg i18n.ErrorMessageKey, inserts ...any) error {
	if err != nil {
		return i18n.WrapError(cm.bgCtx, err, failMsg, inserts...)
	}
	cm.started = append(cm.started, namedStoppable{name: desc, c: c})
	return nil
}

func (cm *componentManager) addIfOpened(desc string, c closeable, err error, failMsg i18n.ErrorMessageKey) error {
	if err != nil {
		return i18n.WrapError(cm.bgCtx, err, failMsg)
	}
	cm.opened = append(cm.opened, namedCloseable{name: desc, c: c})
	return nil
}

func (cm *componentManager) Stop() {
	log.L(cm.bgCtx).Info("Stopping")
	for i := len(cm.started) - 1; i >= 0; i-- {
		s := cm.started[i]
		log.L(cm.bgCtx).Infof("Stopping %s", s.name)
		s.c.Stop()
		log.L(cm.bgCtx).Debugf("Stopped %s", s.name)
	}
	for i := len(cm.opened) - 1; i >= 0; i-- {
		o := cm.opened[i]
		log.L(cm.bgCtx).Infof("Stopping %s", o.name)
		o.c.Close()
		log.L(cm.bgCtx).Debugf("Stopped %s", o.name)
	}
	log.L(cm.bgCtx).Debug("Stopped")
}

func (cm *componentManager) Persistence() persistence.Persistence {
	return cm.persistence
}

func (cm *componentManager) MetricsManager() metrics.Metrics {
	return cm.metricsManager
}

func (cm *componentManager) OracleManager() components.OracleManager {
	return cm.oracleManager
}

func (cm *componentManager) EndpointManager() components.EndpointManager {
	return cm.endpointManager
}

func (cm *componentManager) ProxyDirectory() components.ProxyDirectory {
	return cm.proxyDirectory
}

func (cm *componentManager) Correlator() components.Correlator {
	return cm.correlator
}

func (cm *componentManager) Transport() components.Transport {
	return cm.transport
}

func (cm *componentManager) Discovery() components.Discovery {
	return cm.discovery
}
