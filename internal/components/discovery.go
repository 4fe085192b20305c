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

	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
)

type StartDiscoveryRequest struct {
	CorrelationID string // generated when empty
	Source        string
	Destination   string // skips the oracle when set
	Party         alstypes.PartyIdentifier
}

type SuccessCallback struct {
	Source string // the participant that answered
	Result *alstypes.PartyResult
}

type ErrorCallback struct {
	Source           string
	ErrorInformation alstypes.ErrorInformation
}

// Discovery drives each request through the discovery state machine
type Discovery interface {
	ManagerLifecycle
	StartDiscovery(ctx context.Context, req *StartDiscoveryRequest) (correlationID string, err error)
	OnSuccess(ctx context.Context, correlationID string, cb *SuccessCallback) error
	OnError(ctx context.Context, correlationID string, cb *ErrorCallback) error
	GetDiscovery(ctx context.Context, correlationID string) (*alstypes.DiscoveryRequest, error)
}

// TransitionFn mutates a private copy of the request while it moves to the new state,
// an error leaves the stored request untouched and is returned from Transition
type TransitionFn func(req *alstypes.DiscoveryRequest) error

// ExpiryHandler is called once when a correlation's deadline passes while it is still registered
type ExpiryHandler func(ctx context.Context, correlationID string)

// Correlator holds the single live entry for each in-flight discovery
type Correlator interface {
	ManagerLifecycle
	Register(ctx context.Context, req *alstypes.DiscoveryRequest, onExpire ExpiryHandler) error
	// Atomically moves the request from one of the given states (any non-terminal state when from is empty)
	// to the target state. Reaching a terminal state releases the correlation.
	Transition(ctx context.Context, correlationID string, from []alstypes.DiscoveryState, to alstypes.DiscoveryState, fn TransitionFn) (*alstypes.DiscoveryRequest, error)
	Get(correlationID string) (*alstypes.DiscoveryRequest, bool)
	InFlight() int
}

type ForwardRequest struct {
	URL           string
	CorrelationID string
	Source        string
	Destination   string
}

type DeliveryRequest struct {
	URL           string
	CorrelationID string
	Source        string
	Destination   string
	Body          interface{}
}

// Transport performs the outbound protocol calls, the core only decides destination and payload
type Transport interface {
	ManagerLifecycle
	Forward(ctx context.Context, req *ForwardRequest) error
	// Retryable reports whether a failed delivery might succeed if repeated
	Deliver(ctx context.Context, req *DeliveryRequest) (retryable bool, err error)
}
