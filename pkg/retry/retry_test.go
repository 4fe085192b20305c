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

package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() *alsconf.RetryConfigWithMax {
	return &alsconf.RetryConfigWithMax{
		RetryConfig: alsconf.RetryConfig{
			InitialDelay: confutil.P("1ms"),
			MaxDelay:     confutil.P("4ms"),
			Factor:       confutil.P(2.0),
		},
		MaxAttempts: confutil.P(3),
	}
}

func TestRetryLimitedGivesUp(t *testing.T) {
	r := NewRetryLimited(fastRetry(), alsconf.GenericRetryDefaults)
	assert.Equal(t, 3, r.MaxAttempts())
	calls := 0
	err := r.Do(context.Background(), func(attempt int) (bool, error) {
		calls++
		return true, fmt.Errorf("pop %d", attempt)
	})
	assert.EqualError(t, err, "pop 3")
	assert.Equal(t, 3, calls)
}

func TestRetryNotRetryable(t *testing.T) {
	r := NewRetryLimited(fastRetry(), alsconf.GenericRetryDefaults)
	calls := 0
	err := r.Do(context.Background(), func(attempt int) (bool, error) {
		calls++
		return false, fmt.Errorf("fatal")
	})
	assert.EqualError(t, err, "fatal")
	assert.Equal(t, 1, calls)
}

func TestRetryEventuallySucceeds(t *testing.T) {
	r := NewRetryIndefinite(&fastRetry().RetryConfig, &alsconf.GenericRetryDefaults.RetryConfig)
	err := r.Do(context.Background(), func(attempt int) (bool, error) {
		if attempt < 5 {
			return true, fmt.Errorf("not yet")
		}
		return false, nil
	})
	require.NoError(t, err)
}

func TestRetryDelayCapped(t *testing.T) {
	r := NewRetryLimited(fastRetry(), alsconf.GenericRetryDefaults)
	assert.Equal(t, time.Millisecond, r.Delay(1))
	assert.Equal(t, 2*time.Millisecond, r.Delay(2))
	assert.Equal(t, 4*time.Millisecond, r.Delay(3))
	assert.Equal(t, 4*time.Millisecond, r.Delay(10))
}

func TestRetryContextCancelled(t *testing.T) {
	r := NewRetryIndefinite(&alsconf.RetryConfig{InitialDelay: confutil.P("10s")}, &alsconf.GenericRetryDefaults.RetryConfig)
	r.UTSetMaxAttempts(5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Do(ctx, func(attempt int) (bool, error) {
		return true, fmt.Errorf("pop")
	})
	assert.Regexp(t, "AL010804", err)
	assert.NoError(t, r.WaitDelay(ctx, 0))
}
