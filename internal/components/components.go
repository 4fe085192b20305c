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

package components

import (
	"context"

	"github.com/mojaloop/account-lookup-service-sub002/internal/metrics"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/persistence"
)

// PreInitComponents are initialized before managers, and do not depend on any other components
type PreInitComponents interface {
	Persistence() persistence.Persistence
	MetricsManager() metrics.Metrics
}

// Managers are initialized after the pre-init components. So that they can call each other,
// their external mockable interfaces are all defined in this package.
type Managers interface {
	OracleManager() OracleManager
	EndpointManager() EndpointManager
	ProxyDirectory() ProxyDirectory
	Correlator() Correlator
	Transport() Transport
	Discovery() Discovery
}

// All managers conform to a standard lifecycle
type ManagerLifecycle interface {
	// Init only depends on the configuration and pre-init components - no other managers
	PreInit(PreInitComponents) (*ManagerInitResult, error)
	// Post-init allows the manager to cross-bind to other managers
	PostInit(AllComponents) error
	Start() error
	Stop()
}

type HealthCheck func(ctx context.Context) error

// Managers can contribute to the readiness of the process in a generic way
type ManagerInitResult struct {
	HealthChecks map[string]HealthCheck
}

type AllComponents interface {
	PreInitComponents
	Managers
}
