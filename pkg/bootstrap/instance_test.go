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

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path"
	"syscall"
	"testing"

	"github.com/mojaloop/account-lookup-service-sub002/internal/componentmgr"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/metrics"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockComponentManager struct {
	mock.Mock
}

func (m *mockComponentManager) Init() error          { return m.Called().Error(0) }
func (m *mockComponentManager) StartManagers() error { return m.Called().Error(0) }
func (m *mockComponentManager) CompleteStart() error { return m.Called().Error(0) }
func (m *mockComponentManager) Stop()                { m.Called() }

func (m *mockComponentManager) Persistence() persistence.Persistence        { return nil }
func (m *mockComponentManager) MetricsManager() metrics.Metrics             { return nil }
func (m *mockComponentManager) OracleManager() components.OracleManager     { return nil }
func (m *mockComponentManager) EndpointManager() components.EndpointManager { return nil }
func (m *mockComponentManager) ProxyDirectory() components.ProxyDirectory   { return nil }
func (m *mockComponentManager) Correlator() components.Correlator           { return nil }
func (m *mockComponentManager) Transport() components.Transport             { return nil }
func (m *mockComponentManager) Discovery() components.Discovery             { return nil }

func setupTestConfig(t *testing.T, mockers ...func(mockCM *mockComponentManager)) (configFile string, done func()) {
	origCMFactory := componentManagerFactory
	mockCM := &mockComponentManager{}
	componentManagerFactory = func(bgCtx context.Context, conf *alsconf.ALSConfig) componentmgr.ComponentManager {
		assert.Equal(t, []string{"redis-0:6379", "redis-1:6379"}, conf.ProxyCache.Addresses)
		return mockCM
	}
	for _, mocker := range mockers {
		mocker(mockCM)
	}
	configFile = path.Join(t.TempDir(), "als.conf.yaml")
	err := os.WriteFile(configFile, []byte(`
proxyCache:
  addresses:
  - redis-0:6379
  - redis-1:6379
`), 0664)
	require.NoError(t, err)
	return configFile, func() {
		componentManagerFactory = origCMFactory
		mockCM.AssertExpectations(t)
	}
}

func startedMocks(cmStarted chan struct{}) func(mockCM *mockComponentManager) {
	return func(mockCM *mockComponentManager) {
		mockCM.On("Init").Return(nil)
		mockCM.On("StartManagers").Return(nil)
		mockCM.On("CompleteStart").Return(nil).Run(func(args mock.Arguments) {
			close(cmStarted)
		})
		mockCM.On("Stop").Return()
	}
}

func TestRunAndStop(t *testing.T) {
	cmStarted := make(chan struct{})
	configFile, done := setupTestConfig(t, startedMocks(cmStarted))
	defer done()

	completed := make(chan RC)
	go func() {
		completed <- Run(configFile)
	}()

	<-cmStarted

	// a second instance in the same process is refused
	assert.Panics(t, func() {
		Run(configFile)
	})

	Stop()
	assert.Equal(t, RC_OK, <-completed)
	assert.Nil(t, running.Load())
}

func TestSignalHandlerStop(t *testing.T) {
	cmStarted := make(chan struct{})
	configFile, done := setupTestConfig(t, startedMocks(cmStarted))
	defer done()

	completed := make(chan RC)
	go func() {
		completed <- Run(configFile)
	}()

	<-cmStarted

	inst := running.Load()
	(*inst).signals <- syscall.SIGQUIT

	assert.Equal(t, RC_OK, <-completed)
}

func TestBadConfigFile(t *testing.T) {
	_, done := setupTestConfig(t)
	defer done()

	rc := Run(path.Join(t.TempDir(), "wrong.yaml"))
	assert.Equal(t, RC_FAIL, rc)
}

func TestComponentManagerStartFail(t *testing.T) {
	configFile, done := setupTestConfig(t, func(mockCM *mockComponentManager) {
		mockCM.On("Init").Return(nil)
		mockCM.On("StartManagers").Return(nil)
		mockCM.On("CompleteStart").Return(fmt.Errorf("pop"))
		mockCM.On("Stop").Return()
	})
	defer done()

	rc := Run(configFile)
	assert.Equal(t, RC_FAIL, rc)
}

func TestComponentManagerInitFail(t *testing.T) {
	configFile, done := setupTestConfig(t, func(mockCM *mockComponentManager) {
		mockCM.On("Init").Return(fmt.Errorf("pop"))
		mockCM.On("Stop").Return()
	})
	defer done()

	rc := Run(configFile)
	assert.Equal(t, RC_FAIL, rc)
}
