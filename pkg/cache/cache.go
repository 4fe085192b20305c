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

package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	cacheimpl "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
	"golang.org/x/sync/singleflight"
)

// Generator produces the value for a key on a miss. It is run at most once
// concurrently per key, and its error is never stored.
type Generator[V any] func(ctx context.Context) (V, error)

type Decorated[V any] struct {
	Value    V
	Cached   bool
	StoredAt time.Time
}

// Observer receives counters for one named cache
type Observer interface {
	CacheHit(name string)
	CacheMiss(name string)
	CacheGenerationFailed(name string)
}

type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K, gen Generator[V]) (V, error)
	GetDecorated(ctx context.Context, key K, gen Generator[V]) (*Decorated[V], error)
	Peek(key K) (V, bool)
	Set(key K, val V)
	Delete(key K)
	Clear()
	Capacity() int
	TTL() time.Duration
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

type cache[K comparable, V any] struct {
	name            string
	capacity        int
	ttl             time.Duration
	generateTimeout time.Duration
	observer        Observer
	now             func() time.Time

	entries atomic.Pointer[cacheimpl.Cache[K, *entry[V]]]
	flights singleflight.Group
	// bumped by every Delete/Clear so a generation that raced an invalidation is not stored
	epoch atomic.Uint64
}

func NewCache[K comparable, V any](name string, conf *alsconf.CacheConfig, defs *alsconf.CacheConfig, observer Observer) Cache[K, V] {
	if observer == nil {
		observer = noopObserver{}
	}
	c := &cache[K, V]{
		name:            name,
		capacity:        confutil.Min(conf.Capacity, 1, *defs.Capacity),
		ttl:             confutil.DurationMin(conf.TTL, 0, *defs.TTL),
		generateTimeout: confutil.DurationMin(conf.GenerateTimeout, time.Millisecond, *defs.GenerateTimeout),
		observer:        observer,
		now:             time.Now,
	}
	c.Clear()
	return c
}

func (c *cache[K, V]) Capacity() int {
	return c.capacity
}

func (c *cache[K, V]) TTL() time.Duration {
	return c.ttl
}

func (c *cache[K, V]) Get(ctx context.Context, key K, gen Generator[V]) (V, error) {
	d, err := c.GetDecorated(ctx, key, gen)
	if err != nil {
		var zero V
		return zero, err
	}
	return d.Value, nil
}

func (c *cache[K, V]) GetDecorated(ctx context.Context, key K, gen Generator[V]) (*Decorated[V], error) {
	if e := c.lookup(key); e != nil {
		c.observer.CacheHit(c.name)
		return &Decorated[V]{Value: e.value, Cached: true, StoredAt: e.storedAt}, nil
	}
	c.observer.CacheMiss(c.name)

	flightKey := keyString(key)
	resultCh := c.flights.DoChan(flightKey, func() (interface{}, error) {
		return c.generate(ctx, key, flightKey, gen)
	})
	select {
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}
		e := res.Val.(*entry[V])
		return &Decorated[V]{Value: e.value, StoredAt: e.storedAt}, nil
	case <-ctx.Done():
		// only this caller gives up, the generation continues for any others attached
		return nil, i18n.NewError(ctx, msgs.MsgContextCanceled)
	}
}

// generate runs inside the single flight for the key, so all attached callers share its outcome
func (c *cache[K, V]) generate(ctx context.Context, key K, flightKey string, gen Generator[V]) (*entry[V], error) {
	epoch := c.epoch.Load()
	type genResult struct {
		v   V
		err error
	}
	done := make(chan genResult, 1)
	go func() {
		// the generator is not aborted by the timeout, or by the first caller going away
		v, err := gen(context.WithoutCancel(ctx))
		done <- genResult{v, err}
	}()

	timer := time.NewTimer(c.generateTimeout)
	defer timer.Stop()
	select {
	case r := <-done:
		if r.err != nil {
			c.observer.CacheGenerationFailed(c.name)
			return nil, r.err
		}
		e := &entry[V]{value: r.v, storedAt: c.now()}
		if c.epoch.Load() == epoch {
			c.store(key, e)
		}
		return e, nil
	case <-timer.C:
		c.observer.CacheGenerationFailed(c.name)
		log.L(ctx).Warnf("Cache %s generation for %s exceeded %s", c.name, flightKey, c.generateTimeout)
		return nil, i18n.NewError(ctx, msgs.MsgCacheGenerationTimeout, flightKey, c.generateTimeout)
	}
}

func (c *cache[K, V]) lookup(key K) *entry[V] {
	e, ok := c.entries.Load().Get(key)
	if !ok {
		return nil
	}
	if c.ttl > 0 && !c.now().Before(e.storedAt.Add(c.ttl)) {
		c.entries.Load().Delete(key)
		return nil
	}
	return e
}

func (c *cache[K, V]) store(key K, e *entry[V]) {
	if c.ttl > 0 {
		c.entries.Load().Set(key, e, cacheimpl.WithExpiration(c.ttl))
	} else {
		c.entries.Load().Set(key, e)
	}
}

func (c *cache[K, V]) Peek(key K) (V, bool) {
	if e := c.lookup(key); e != nil {
		return e.value, true
	}
	var zero V
	return zero, false
}

func (c *cache[K, V]) Set(key K, val V) {
	c.store(key, &entry[V]{value: val, storedAt: c.now()})
}

func (c *cache[K, V]) Delete(key K) {
	c.epoch.Add(1)
	c.flights.Forget(keyString(key))
	c.entries.Load().Delete(key)
}

func (c *cache[K, V]) Clear() {
	// go-generics-cache has no clear, so we swap in a new one
	c.epoch.Add(1)
	c.entries.Store(cacheimpl.New[K, *entry[V]](cacheimpl.AsLRU[K, *entry[V]](
		lru.WithCapacity(c.capacity),
	)))
}

// keyString is the single-flight key. Go syntax quotes every string field, so distinct keys never share a flight.
func keyString[K comparable](key K) string {
	return fmt.Sprintf("%#v", key)
}

type noopObserver struct{}

func (noopObserver) CacheHit(string)              {}
func (noopObserver) CacheMiss(string)             {}
func (noopObserver) CacheGenerationFailed(string) {}
