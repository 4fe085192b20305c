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

package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/discovery/metrics"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/cache"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/retry"
)

type discoveryManager struct {
	bgCtx          context.Context
	cancelCtx      context.CancelFunc
	conf           *alsconf.DiscoveryConfig
	deadline       time.Duration
	maxProxyHops   int
	hubName        string
	deliveryRetry  *retry.Retry
	deliveries     sync.WaitGroup
	finished       cache.Cache[string, *alstypes.DiscoveryRequest]
	metrics        metrics.DiscoveryMetrics
	oracle         components.OracleManager
	endpoints      components.EndpointManager
	proxyDirectory components.ProxyDirectory
	correlator     components.Correlator
	transport      components.Transport
}

func NewDiscoveryManager(bgCtx context.Context, conf *alsconf.DiscoveryConfig) components.Discovery {
	dm := &discoveryManager{
		conf:          conf,
		deadline:      confutil.DurationMin(conf.Deadline, 10*time.Millisecond, *alsconf.DiscoveryDefaults.Deadline),
		maxProxyHops:  confutil.Min(conf.MaxProxyHops, 0, *alsconf.DiscoveryDefaults.MaxProxyHops),
		hubName:       confutil.StringNotEmpty(conf.HubName, *alsconf.DiscoveryDefaults.HubName),
		deliveryRetry: retry.NewRetryLimited(&conf.DeliveryRetry, &alsconf.DiscoveryDefaults.DeliveryRetry),
	}
	dm.bgCtx, dm.cancelCtx = context.WithCancel(log.WithComponent(bgCtx, "discovery"))
	return dm
}

func (dm *discoveryManager) PreInit(pic components.PreInitComponents) (*components.ManagerInitResult, error) {
	dm.metrics = metrics.InitMetrics(dm.bgCtx, pic.MetricsManager().Registry())
	dm.finished = cache.NewCache[string, *alstypes.DiscoveryRequest]("discovery", &dm.conf.Finished,
		&alsconf.DiscoveryDefaults.Finished, pic.MetricsManager().CacheObserver())
	return &components.ManagerInitResult{}, nil
}

func (dm *discoveryManager) PostInit(c components.AllComponents) error {
	dm.oracle = c.OracleManager()
	dm.endpoints = c.EndpointManager()
	dm.proxyDirectory = c.ProxyDirectory()
	dm.correlator = c.Correlator()
	dm.transport = c.Transport()
	return nil
}

func (dm *discoveryManager) Start() error { return nil }

func (dm *discoveryManager) Stop() {
	dm.cancelCtx()
	dm.deliveries.Wait()
}

func (dm *discoveryManager) StartDiscovery(ctx context.Context, req *components.StartDiscoveryRequest) (string, error) {
	if err := req.Party.Validate(ctx); err != nil {
		return "", err
	}
	if req.Source == "" {
		return "", i18n.NewError(ctx, msgs.MsgSourceMissing)
	}
	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx = log.WithCorrelationID(ctx, correlationID)

	dr := &alstypes.DiscoveryRequest{
		CorrelationID:  correlationID,
		Source:         req.Source,
		Destination:    req.Destination,
		Party:          req.Party,
		State:          alstypes.DiscoveryStateInitiated,
		VisitedProxies: []string{},
		Deadline:       time.Now().Add(dm.deadline),
	}
	if err := dm.correlator.Register(ctx, dr, dm.onDeadline); err != nil {
		return "", err
	}
	dm.metrics.IncStarted()
	log.L(ctx).Infof("Discovery started for %s from %s", req.Party.String(), req.Source)

	dm.lookup(ctx, correlationID)
	return correlationID, nil
}

func (dm *discoveryManager) lookup(ctx context.Context, correlationID string) {
	dr, err := dm.correlator.Transition(ctx, correlationID,
		[]alstypes.DiscoveryState{alstypes.DiscoveryStateInitiated}, alstypes.DiscoveryStateOracleLookup, nil)
	if err != nil {
		dm.movedOn(ctx, err)
		return
	}
	fromLookup := []alstypes.DiscoveryState{alstypes.DiscoveryStateOracleLookup}

	owner := dr.Destination
	oracleNamed := false
	if owner == "" {
		assoc, err := dm.oracle.FindAssociation(ctx, dr.Party)
		switch {
		case err == nil:
			owner = assoc.Value
			oracleNamed = true
		case msgs.Is(err, msgs.MsgOracleAssociationNotFound):
			log.L(ctx).Debugf("No oracle association for %s, trying proxies", dr.Party.String())
		default:
			dm.terminate(ctx, correlationID, fromLookup, alstypes.DiscoveryStateFailed, dm.hubName, errorInfo(err))
			return
		}
	}

	if owner == "" {
		// nobody locally claims the party, ask the proxies one at a time
		proxyID, err := dm.nextProxy(ctx, dr)
		switch {
		case err != nil:
			dm.terminate(ctx, correlationID, fromLookup, alstypes.DiscoveryStateFailed, dm.hubName, errorInfo(err))
		case proxyID == "":
			dm.terminate(ctx, correlationID, fromLookup, alstypes.DiscoveryStateUnresolved, dm.hubName,
				errorInfo(i18n.NewError(ctx, msgs.MsgDiscoveryUnresolved, dr.Party.String())))
		default:
			dm.routeViaProxy(ctx, dr, fromLookup, "", proxyID)
		}
		return
	}
	dm.routeToOwner(ctx, dr, fromLookup, owner, oracleNamed)
}

func (dm *discoveryManager) routeToOwner(ctx context.Context, dr *alstypes.DiscoveryRequest, from []alstypes.DiscoveryState, owner string, oracleNamed bool) {
	url, err := dm.endpoints.RenderEndpoint(ctx, owner, alstypes.EndpointTypePartiesGet, dr.Party)
	if err == nil {
		dm.forward(ctx, dr.CorrelationID, from, owner, url, func(req *alstypes.DiscoveryRequest) error {
			req.Owner = owner
			return nil
		})
		return
	}
	if !msgs.Is(err, msgs.MsgEndpointNotFound) {
		dm.terminate(ctx, dr.CorrelationID, from, alstypes.DiscoveryStateFailed, dm.hubName, errorInfo(err))
		return
	}

	// not directly connected, it might be reachable through a proxy
	proxyID, perr := dm.proxyDirectory.ResolveProxy(ctx, owner)
	switch {
	case perr == nil:
		dm.routeViaProxy(ctx, dr, from, owner, proxyID)
	case !msgs.Is(perr, msgs.MsgProxyNotFound):
		dm.terminate(ctx, dr.CorrelationID, from, alstypes.DiscoveryStateFailed, dm.hubName, errorInfo(perr))
	case oracleNamed:
		dm.terminate(ctx, dr.CorrelationID, from, alstypes.DiscoveryStateFailed, dm.hubName,
			errorInfo(i18n.NewError(ctx, msgs.MsgDiscoveryNoDestinations, owner)))
	default:
		dm.terminate(ctx, dr.CorrelationID, from, alstypes.DiscoveryStateUnresolved, dm.hubName,
			errorInfo(i18n.NewError(ctx, msgs.MsgDiscoveryUnresolved, dr.Party.String())))
	}
}

// nextProxy returns the first registered proxy this request has not visited, or "" when there is none
func (dm *discoveryManager) nextProxy(ctx context.Context, dr *alstypes.DiscoveryRequest) (string, error) {
	proxies, err := dm.proxyDirectory.ListProxies(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range proxies {
		if !dr.HasVisited(p) {
			return p, nil
		}
	}
	return "", nil
}

func (dm *discoveryManager) hopsExhausted(dr *alstypes.DiscoveryRequest) bool {
	return dm.maxProxyHops > 0 && len(dr.VisitedProxies) >= dm.maxProxyHops
}

func (dm *discoveryManager) routeViaProxy(ctx context.Context, dr *alstypes.DiscoveryRequest, from []alstypes.DiscoveryState, owner, proxyID string) {
	dr, err := dm.correlator.Transition(ctx, dr.CorrelationID, from, alstypes.DiscoveryStateProxyRoute, func(req *alstypes.DiscoveryRequest) error {
		req.VisitedProxies = append(req.VisitedProxies, proxyID)
		req.Owner = owner
		req.Speculative = false
		return nil
	})
	if err != nil {
		dm.movedOn(ctx, err)
		return
	}
	dm.metrics.IncProxyRoute()
	fromProxyRoute := []alstypes.DiscoveryState{alstypes.DiscoveryStateProxyRoute}
	log.L(ctx).Infof("Routing discovery via proxy %s (visited=%v)", proxyID, dr.VisitedProxies)

	url, err := dm.endpoints.RenderEndpoint(ctx, proxyID, alstypes.EndpointTypePartiesGet, dr.Party)
	if err != nil {
		dm.terminate(ctx, dr.CorrelationID, fromProxyRoute, alstypes.DiscoveryStateFailed, dm.hubName, errorInfo(err))
		return
	}

	speculative := false
	if owner != "" {
		_, err := dm.oracle.CreateAssociation(ctx, &alstypes.NewOracleAssociation{
			OracleScope: dr.Party.PartyScope(),
			Value:       owner,
			Speculative: true,
			CreatedBy:   dm.hubName,
		})
		if err != nil {
			log.L(ctx).Warnf("Could not record speculative association %s -> %s: %s", dr.Party.String(), owner, err)
		}
		speculative = err == nil
	}

	forwarded := dm.forward(ctx, dr.CorrelationID, fromProxyRoute, proxyID, url, func(req *alstypes.DiscoveryRequest) error {
		req.Speculative = speculative
		return nil
	})
	if !forwarded && speculative {
		dm.deactivateSpeculative(ctx, dr.Party, owner)
	}
}

// forward reports whether the request was recorded as FORWARDED, the outcome after that is driven by the state machine
func (dm *discoveryManager) forward(ctx context.Context, correlationID string, from []alstypes.DiscoveryState, target, url string, fn components.TransitionFn) bool {
	dr, err := dm.correlator.Transition(ctx, correlationID, from, alstypes.DiscoveryStateForwarded, func(req *alstypes.DiscoveryRequest) error {
		req.Target = target
		req.TargetURL = url
		return fn(req)
	})
	if err != nil {
		dm.movedOn(ctx, err)
		return false
	}

	destination := dr.Owner
	if destination == "" {
		destination = dr.Destination
	}
	fctx, cancel := context.WithDeadline(context.WithoutCancel(ctx), dr.Deadline)
	defer cancel()
	err = dm.transport.Forward(fctx, &components.ForwardRequest{
		URL:           url,
		CorrelationID: correlationID,
		Source:        dr.Source,
		Destination:   destination,
	})
	fromForwarded := []alstypes.DiscoveryState{alstypes.DiscoveryStateForwarded}
	if err != nil {
		dm.terminate(ctx, correlationID, fromForwarded, alstypes.DiscoveryStateFailed, dm.hubName, errorInfo(err))
		return true
	}
	// a fast callback may already have moved the request on
	if _, err := dm.correlator.Transition(ctx, correlationID, fromForwarded, alstypes.DiscoveryStateAwaitingCallback, nil); err != nil {
		log.L(ctx).Debugf("Callback arrived before forward completed: %s", err)
	}
	return true
}

func (dm *discoveryManager) OnSuccess(ctx context.Context, correlationID string, cb *components.SuccessCallback) error {
	ctx = log.WithCorrelationID(ctx, correlationID)
	if cb.Source == "" {
		return i18n.NewError(ctx, msgs.MsgSourceMissing)
	}
	dr, err := dm.correlator.Transition(ctx, correlationID, awaitingStates, alstypes.DiscoveryStateSucceeded, callbackFrom(ctx, cb.Source))
	if err != nil {
		dm.discardCallback(ctx, err)
		return err
	}
	dm.recordFinished(ctx, dr)
	log.L(ctx).Infof("Discovery succeeded, %s answered for %s", cb.Source, dr.Party.String())

	switch {
	case dr.Speculative:
		if err := dm.oracle.ConfirmAssociation(ctx, dr.Party, dr.Owner); err != nil {
			log.L(ctx).Warnf("Could not confirm speculative association %s -> %s: %s", dr.Party.String(), dr.Owner, err)
		}
	case dr.Owner == "" && len(dr.VisitedProxies) > 0:
		dm.learnFromProxy(ctx, dr, cb.Source)
	}

	body := cb.Result
	if body == nil {
		body = &alstypes.PartyResult{}
	}
	dm.deliverAsync(dr, alstypes.EndpointTypePartiesPut, cb.Source, body)
	return nil
}

// learnFromProxy remembers who answered a proxied broadcast, so the next discovery for the party goes straight there
func (dm *discoveryManager) learnFromProxy(ctx context.Context, dr *alstypes.DiscoveryRequest, answeredBy string) {
	if answeredBy == dr.Target {
		return
	}
	if err := dm.proxyDirectory.RegisterMapping(ctx, &alstypes.ProxyMapping{FspID: answeredBy, ProxyID: dr.Target}); err != nil {
		log.L(ctx).Warnf("Could not record proxy mapping %s -> %s: %s", answeredBy, dr.Target, err)
		return
	}
	_, err := dm.oracle.CreateAssociation(ctx, &alstypes.NewOracleAssociation{
		OracleScope: dr.Party.PartyScope(),
		Value:       answeredBy,
		CreatedBy:   dm.hubName,
	})
	if err != nil {
		log.L(ctx).Warnf("Could not record association %s -> %s: %s", dr.Party.String(), answeredBy, err)
	}
}

func (dm *discoveryManager) OnError(ctx context.Context, correlationID string, cb *components.ErrorCallback) error {
	ctx = log.WithCorrelationID(ctx, correlationID)
	if cb.Source == "" {
		return i18n.NewError(ctx, msgs.MsgSourceMissing)
	}
	if cb.ErrorInformation.ErrorCode == "" {
		return i18n.NewError(ctx, msgs.MsgErrorInformationMissing)
	}
	wasSpeculative := false
	dr, err := dm.correlator.Transition(ctx, correlationID, awaitingStates, alstypes.DiscoveryStateErrored, func(req *alstypes.DiscoveryRequest) error {
		if err := callbackFrom(ctx, cb.Source)(req); err != nil {
			return err
		}
		wasSpeculative = req.Speculative
		req.Speculative = false
		return nil
	})
	if err != nil {
		dm.discardCallback(ctx, err)
		return err
	}
	log.L(ctx).Infof("Discovery errored at %s: %s %s", cb.Source, cb.ErrorInformation.ErrorCode, cb.ErrorInformation.ErrorDescription)

	if wasSpeculative {
		dm.deactivateSpeculative(ctx, dr.Party, dr.Owner)
	}
	fromErrored := []alstypes.DiscoveryState{alstypes.DiscoveryStateErrored}
	fail := func(reason error) {
		if reason != nil {
			log.L(ctx).Infof("Not retrying via a proxy: %s", reason)
		}
		dm.terminate(ctx, correlationID, fromErrored, alstypes.DiscoveryStateFailed, cb.Source, &cb.ErrorInformation)
	}

	var proxyID string
	if dr.Owner != "" {
		proxyID, err = dm.proxyDirectory.ResolveProxy(ctx, dr.Owner)
	} else {
		proxyID, err = dm.nextProxy(ctx, dr)
	}
	switch {
	case err != nil:
		fail(err)
	case proxyID == "":
		fail(nil)
	case dr.HasVisited(proxyID):
		fail(i18n.NewError(ctx, msgs.MsgProxyLoopDetected, proxyID))
	case dm.hopsExhausted(dr):
		fail(i18n.NewError(ctx, msgs.MsgProxyHopsExhausted, dm.maxProxyHops))
	default:
		dm.routeViaProxy(ctx, dr, fromErrored, dr.Owner, proxyID)
	}
	return nil
}

func (dm *discoveryManager) onDeadline(ctx context.Context, correlationID string) {
	cause := i18n.NewError(ctx, msgs.MsgDiscoveryTimedOut, correlationID, dm.deadline)
	dm.terminate(ctx, correlationID, nil, alstypes.DiscoveryStateTimedOut, dm.hubName, errorInfo(cause))
}

func (dm *discoveryManager) GetDiscovery(ctx context.Context, correlationID string) (*alstypes.DiscoveryRequest, error) {
	if dr, ok := dm.correlator.Get(correlationID); ok {
		return dr, nil
	}
	if dr, ok := dm.finished.Peek(correlationID); ok {
		return dr.Clone(), nil
	}
	return nil, i18n.NewError(ctx, msgs.MsgDiscoveryNotFound, correlationID)
}

// terminate moves the request to a non-success terminal state, and tells the source why
func (dm *discoveryManager) terminate(ctx context.Context, correlationID string, from []alstypes.DiscoveryState, to alstypes.DiscoveryState, errSource string, info *alstypes.ErrorInformation) {
	dr, err := dm.correlator.Transition(ctx, correlationID, from, to, nil)
	if err != nil {
		dm.movedOn(ctx, err)
		return
	}
	dm.recordFinished(ctx, dr)
	log.L(ctx).Errorf("Discovery for %s ended %s: %s %s", dr.Party.String(), to, info.ErrorCode, info.ErrorDescription)
	if dr.Speculative {
		dm.deactivateSpeculative(ctx, dr.Party, dr.Owner)
	}
	dm.deliverAsync(dr, alstypes.EndpointTypePartiesPutError, errSource, &alstypes.ErrorInformationObject{ErrorInformation: *info})
}

func (dm *discoveryManager) recordFinished(ctx context.Context, dr *alstypes.DiscoveryRequest) {
	dm.metrics.IncTerminal(dr.State)
	dm.finished.Set(dr.CorrelationID, dr)
}

func (dm *discoveryManager) deactivateSpeculative(ctx context.Context, party alstypes.PartyIdentifier, owner string) {
	if err := dm.oracle.DeactivateAssociation(ctx, party, owner); err != nil {
		log.L(ctx).Warnf("Could not deactivate speculative association %s -> %s: %s", party.String(), owner, err)
	}
}

func (dm *discoveryManager) movedOn(ctx context.Context, err error) {
	log.L(ctx).Debugf("Discovery has moved on: %s", err)
}

// callbackFrom only lets the participant a request was forwarded to answer it. A proxy relays the
// answer under the responder's own id, so once a proxy has been visited any source is accepted.
func callbackFrom(ctx context.Context, source string) components.TransitionFn {
	return func(req *alstypes.DiscoveryRequest) error {
		if len(req.VisitedProxies) == 0 && req.Target != "" && source != req.Target {
			return i18n.NewError(ctx, msgs.MsgCallbackSourceMismatch, req.CorrelationID, source, req.Target)
		}
		return nil
	}
}

func (dm *discoveryManager) discardCallback(ctx context.Context, err error) {
	reason := "unknown"
	switch {
	case msgs.Is(err, msgs.MsgCallbackSourceMismatch):
		reason = "source_mismatch"
	case msgs.Is(err, msgs.MsgDiscoveryNotFound):
		reason = "unmatched"
	case msgs.Is(err, msgs.MsgCallbackForTerminalState):
		reason = "terminal"
	case msgs.Is(err, msgs.MsgCallbackUnexpectedState):
		reason = "unexpected_state"
	}
	dm.metrics.IncCallbackDiscarded(reason)
	log.L(ctx).Warnf("Discarding callback: %s", err)
}

var awaitingStates = []alstypes.DiscoveryState{
	alstypes.DiscoveryStateForwarded,
	alstypes.DiscoveryStateAwaitingCallback,
}

func errorInfo(err error) *alstypes.ErrorInformation {
	info := alstypes.ErrorInformationFor(err)
	return &info
}
