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

package correlator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
	"github.com/puzpuzpuz/xsync/v4"
)

// each entry holds an immutable snapshot, replaced by compare-and-swap on every transition
type entry struct {
	current atomic.Pointer[alstypes.DiscoveryRequest]
	timer   atomic.Pointer[time.Timer]
}

type correlator struct {
	bgCtx   context.Context
	entries *xsync.Map[string, *entry]
	stopped atomic.Bool
}

func NewCorrelator(bgCtx context.Context) components.Correlator {
	return &correlator{
		bgCtx:   log.WithComponent(bgCtx, "correlator"),
		entries: xsync.NewMap[string, *entry](),
	}
}

func (c *correlator) PreInit(components.PreInitComponents) (*components.ManagerInitResult, error) {
	return &components.ManagerInitResult{}, nil
}

func (c *correlator) PostInit(components.AllComponents) error { return nil }

func (c *correlator) Start() error { return nil }

func (c *correlator) Stop() {
	c.stopped.Store(true)
	c.entries.Range(func(id string, e *entry) bool {
		if t := e.timer.Load(); t != nil {
			t.Stop()
		}
		return true
	})
}

func (c *correlator) Register(ctx context.Context, req *alstypes.DiscoveryRequest, onExpire components.ExpiryHandler) error {
	if c.stopped.Load() {
		return i18n.NewError(ctx, msgs.MsgDiscoveryStopped)
	}
	if req.CorrelationID == "" {
		return i18n.NewError(ctx, msgs.MsgCorrelationIDMissing)
	}
	initial := req.Clone()
	if initial.State == "" {
		initial.State = alstypes.DiscoveryStateInitiated
	}
	initial.Transitions = []alstypes.DiscoveryState{initial.State}

	e := &entry{}
	e.current.Store(initial)
	if _, loaded := c.entries.LoadOrStore(req.CorrelationID, e); loaded {
		return i18n.NewError(ctx, msgs.MsgDiscoveryAlreadyInFlight, req.CorrelationID)
	}

	correlationID := req.CorrelationID
	expiryCtx := log.WithCorrelationID(c.bgCtx, correlationID)
	e.timer.Store(time.AfterFunc(time.Until(initial.Deadline), func() {
		if onExpire != nil {
			onExpire(expiryCtx, correlationID)
		}
	}))
	log.L(ctx).Debugf("Registered correlation deadline=%s", initial.Deadline.Format(time.RFC3339Nano))
	return nil
}

func stateIn(state alstypes.DiscoveryState, from []alstypes.DiscoveryState) bool {
	if len(from) == 0 {
		return true
	}
	for _, s := range from {
		if s == state {
			return true
		}
	}
	return false
}

func (c *correlator) Transition(ctx context.Context, correlationID string, from []alstypes.DiscoveryState, to alstypes.DiscoveryState, fn components.TransitionFn) (*alstypes.DiscoveryRequest, error) {
	e, ok := c.entries.Load(correlationID)
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgDiscoveryNotFound, correlationID)
	}
	for {
		cur := e.current.Load()
		if cur.State.IsTerminal() {
			return nil, i18n.NewError(ctx, msgs.MsgCallbackForTerminalState, correlationID, cur.State)
		}
		if !stateIn(cur.State, from) {
			return nil, i18n.NewError(ctx, msgs.MsgCallbackUnexpectedState, correlationID, cur.State)
		}
		next := cur.Clone()
		if fn != nil {
			if err := fn(next); err != nil {
				return nil, err
			}
		}
		next.State = to
		next.Transitions = append(next.Transitions, to)
		if !e.current.CompareAndSwap(cur, next) {
			// lost to a concurrent transition, re-check against the new state
			continue
		}
		log.L(ctx).Debugf("Discovery %s -> %s", cur.State, to)
		if to.IsTerminal() {
			if t := e.timer.Load(); t != nil {
				t.Stop()
			}
			c.entries.Delete(correlationID)
		}
		return next.Clone(), nil
	}
}

func (c *correlator) Get(correlationID string) (*alstypes.DiscoveryRequest, bool) {
	e, ok := c.entries.Load(correlationID)
	if !ok {
		return nil, false
	}
	return e.current.Load().Clone(), true
}

func (c *correlator) InFlight() int {
	return c.entries.Size()
}
