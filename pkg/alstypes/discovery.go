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

package alstypes

import (
	"encoding/json"
	"time"
)

type DiscoveryState string

const (
	DiscoveryStateInitiated        DiscoveryState = "INITIATED"
	DiscoveryStateOracleLookup     DiscoveryState = "ORACLE_LOOKUP"
	DiscoveryStateForwarded        DiscoveryState = "FORWARDED"
	DiscoveryStateAwaitingCallback DiscoveryState = "AWAITING_CALLBACK"
	DiscoveryStateProxyRoute       DiscoveryState = "PROXY_ROUTE"
	DiscoveryStateErrored          DiscoveryState = "ERRORED"
	DiscoveryStateSucceeded        DiscoveryState = "SUCCEEDED"
	DiscoveryStateFailed           DiscoveryState = "FAILED"
	DiscoveryStateUnresolved       DiscoveryState = "UNRESOLVED"
	DiscoveryStateTimedOut         DiscoveryState = "TIMED_OUT"
)

func (s DiscoveryState) IsTerminal() bool {
	switch s {
	case DiscoveryStateSucceeded, DiscoveryStateFailed, DiscoveryStateUnresolved, DiscoveryStateTimedOut:
		return true
	}
	return false
}

// DiscoveryRequest is a point-in-time snapshot of one in-flight or finished discovery
type DiscoveryRequest struct {
	CorrelationID  string           `json:"correlationId"`
	Source         string           `json:"source"`
	Destination    string           `json:"destination,omitempty"`
	Party          PartyIdentifier  `json:"party"`
	State          DiscoveryState   `json:"state"`
	Owner          string           `json:"owner,omitempty"`  // participant believed to own the party
	Target         string           `json:"target,omitempty"` // participant or proxy the request was last forwarded to
	TargetURL      string           `json:"targetUrl,omitempty"`
	VisitedProxies []string         `json:"visitedProxies"`
	Speculative    bool             `json:"speculative"`
	Deadline       time.Time        `json:"deadline"`
	Transitions    []DiscoveryState `json:"transitions"` // every state entered, in order
}

func (dr *DiscoveryRequest) Clone() *DiscoveryRequest {
	c := *dr
	c.VisitedProxies = append([]string{}, dr.VisitedProxies...)
	c.Transitions = append([]DiscoveryState{}, dr.Transitions...)
	return &c
}

func (dr *DiscoveryRequest) HasVisited(proxyID string) bool {
	for _, p := range dr.VisitedProxies {
		if p == proxyID {
			return true
		}
	}
	return false
}

func (dr *DiscoveryRequest) Reached(state DiscoveryState) bool {
	for _, s := range dr.Transitions {
		if s == state {
			return true
		}
	}
	return false
}

// PartyResult is the body of a successful discovery callback
type PartyResult struct {
	Party json.RawMessage `json:"party"`
}
