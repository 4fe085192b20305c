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

package transport

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
	"github.com/sirupsen/logrus"
)

const (
	HeaderSource        = "FSPIOP-Source"
	HeaderDestination   = "FSPIOP-Destination"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderDate          = "Date"

	ContentTypeParties = "application/vnd.interoperability.parties+json;version=1.1"
)

type startTimeCtxKey struct{}

type transport struct {
	bgCtx  context.Context
	conf   *alsconf.HTTPClientConfig
	client *resty.Client
}

func NewTransport(bgCtx context.Context, conf *alsconf.HTTPClientConfig) components.Transport {
	return &transport{
		bgCtx: log.WithComponent(bgCtx, "transport"),
		conf:  conf,
	}
}

func (t *transport) PreInit(components.PreInitComponents) (*components.ManagerInitResult, error) {
	t.client = newClient(t.bgCtx, t.conf)
	return &components.ManagerInitResult{}, nil
}

func (t *transport) PostInit(components.AllComponents) error { return nil }

func (t *transport) Start() error { return nil }

func (t *transport) Stop() {}

func newClient(ctx context.Context, conf *alsconf.HTTPClientConfig) *resty.Client {
	connTimeout := confutil.DurationMin(conf.ConnectionTimeout, 0, *alsconf.DefaultHTTPConfig.ConnectionTimeout)
	httpTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connTimeout,
			KeepAlive: connTimeout,
		}).DialContext,
		ForceAttemptHTTP2: true,
	}
	client := resty.NewWithClient(&http.Client{Transport: httpTransport})
	client.SetTimeout(confutil.DurationMin(conf.RequestTimeout, 0, *alsconf.DefaultHTTPConfig.RequestTimeout))
	for k, v := range conf.HTTPHeaders {
		client.SetHeader(k, v)
	}

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		rCtx := log.WithLogField(req.Context(), "breq", uuid.New().String()[0:8])
		rCtx = context.WithValue(rCtx, startTimeCtxKey{}, time.Now())
		req.SetContext(rCtx)
		log.L(rCtx).Debugf("==> %s %s", req.Method, req.URL)
		return nil
	})
	client.OnAfterResponse(func(c *resty.Client, res *resty.Response) error {
		rCtx := res.Request.Context()
		level := logrus.DebugLevel
		if res.StatusCode() >= 300 {
			level = logrus.ErrorLevel
		}
		var elapsed time.Duration
		if start, ok := rCtx.Value(startTimeCtxKey{}).(time.Time); ok {
			elapsed = time.Since(start)
		}
		log.L(rCtx).Logf(level, "<== %s %s [%d] (%dms)", res.Request.Method, res.Request.URL, res.StatusCode(), elapsed.Milliseconds())
		return nil
	})
	log.L(ctx).Debugf("Created outbound HTTP client")
	return client
}

func (t *transport) request(ctx context.Context, correlationID, source, destination string) *resty.Request {
	r := t.client.R().
		SetContext(ctx).
		SetHeader(HeaderSource, source).
		SetHeader(HeaderCorrelationID, correlationID).
		SetHeader(HeaderDate, time.Now().UTC().Format(http.TimeFormat)).
		SetHeader("Accept", ContentTypeParties)
	if destination != "" {
		r.SetHeader(HeaderDestination, destination)
	}
	return r
}

// Forward sends the discovery GET on to the participant or proxy, which answers later by callback
func (t *transport) Forward(ctx context.Context, req *components.ForwardRequest) error {
	res, err := t.request(ctx, req.CorrelationID, req.Source, req.Destination).Get(req.URL)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgForwardFailed, req.URL)
	}
	if !res.IsSuccess() {
		return i18n.NewError(ctx, msgs.MsgForwardBadStatus, req.URL, res.StatusCode())
	}
	return nil
}

func (t *transport) Deliver(ctx context.Context, req *components.DeliveryRequest) (bool, error) {
	res, err := t.request(ctx, req.CorrelationID, req.Source, req.Destination).
		SetHeader("Content-Type", ContentTypeParties).
		SetBody(req.Body).
		Put(req.URL)
	if err != nil {
		// connection level failures may be transient
		return true, i18n.WrapError(ctx, err, msgs.MsgDeliveryRequestErr, req.URL)
	}
	if !res.IsSuccess() {
		status := res.StatusCode()
		retryable := status >= 500 || status == http.StatusTooManyRequests
		return retryable, i18n.NewError(ctx, msgs.MsgDeliveryBadStatus, req.URL, status)
	}
	return false, nil
}
