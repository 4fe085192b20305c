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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/internal/router"
	"github.com/mojaloop/account-lookup-service-sub002/internal/transport"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
)

type handlers struct {
	c            components.AllComponents
	healthChecks map[string]components.HealthCheck
	maxBodySize  int64
}

// NewServer builds the inbound HTTP surface: the discovery GET/PUT/PUT-error triad and registry administration
func NewServer(ctx context.Context, conf *alsconf.HTTPServerConfig, c components.AllComponents, healthChecks map[string]components.HealthCheck) (router.Router, error) {
	r, err := router.NewRouter(ctx, "API (HTTP)", conf)
	if err != nil {
		return nil, err
	}
	Register(r.Mux(), conf, c, healthChecks)
	return r, nil
}

func Register(r *mux.Router, conf *alsconf.HTTPServerConfig, c components.AllComponents, healthChecks map[string]components.HealthCheck) {
	h := &handlers{
		c:            c,
		healthChecks: healthChecks,
		maxBodySize:  confutil.ByteSize(conf.MaxRequestBodySize, 1024, *alsconf.HTTPDefaults.MaxRequestBodySize),
	}

	// error routes first, so "error" is never taken as a sub-id
	r.HandleFunc("/parties/{Type}/{ID}/error", h.putPartiesError).Methods(http.MethodPut)
	r.HandleFunc("/parties/{Type}/{ID}/{SubId}/error", h.putPartiesError).Methods(http.MethodPut)
	r.HandleFunc("/parties/{Type}/{ID}", h.getParties).Methods(http.MethodGet)
	r.HandleFunc("/parties/{Type}/{ID}/{SubId}", h.getParties).Methods(http.MethodGet)
	r.HandleFunc("/parties/{Type}/{ID}", h.putParties).Methods(http.MethodPut)
	r.HandleFunc("/parties/{Type}/{ID}/{SubId}", h.putParties).Methods(http.MethodPut)
	r.HandleFunc("/discoveries/{correlationId}", h.getDiscovery).Methods(http.MethodGet)

	r.HandleFunc("/oracles", h.postOracle).Methods(http.MethodPost)
	r.HandleFunc("/oracles", h.listOracles).Methods(http.MethodGet)
	r.HandleFunc("/oracles/{id:[0-9]+}", h.deleteOracle).Methods(http.MethodDelete)
	r.HandleFunc("/participants/{fspId}/endpoints", h.putEndpoint).Methods(http.MethodPut)
	r.HandleFunc("/participants/{fspId}/endpoints", h.listEndpoints).Methods(http.MethodGet)
	r.HandleFunc("/proxies", h.listProxies).Methods(http.MethodGet)
	r.HandleFunc("/proxies/{fspId}", h.putProxy).Methods(http.MethodPut)
	r.HandleFunc("/proxies/{fspId}", h.deleteProxy).Methods(http.MethodDelete)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
}

type statusError interface {
	HTTPStatus() int
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.L(ctx).Errorf("Failed to write response: %s", err)
		}
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var se statusError
	if errors.As(err, &se) && se.HTTPStatus() > 0 {
		status = se.HTTPStatus()
	}
	log.L(ctx).Errorf("Request failed [%d]: %s", status, err)
	writeJSON(ctx, w, status, &alstypes.ErrorInformationObject{ErrorInformation: alstypes.ErrorInformationFor(err)})
}

func (h *handlers) readJSON(ctx context.Context, w http.ResponseWriter, req *http.Request, into interface{}) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, h.maxBodySize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return i18n.NewError(ctx, msgs.MsgRequestBodyTooLarge, tooLarge.Limit)
	}
	if err == nil {
		err = json.Unmarshal(data, into)
	}
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgRequestBodyInvalid, err.Error())
	}
	return nil
}

func partyFromRequest(req *http.Request) alstypes.PartyIdentifier {
	vars := mux.Vars(req)
	return alstypes.PartyIdentifier{
		Type:     alstypes.PartyIdType(vars["Type"]),
		ID:       vars["ID"],
		SubID:    vars["SubId"],
		Currency: req.URL.Query().Get("currency"),
	}
}

// discarded callbacks are acknowledged, the sender cannot act on them
func isDiscardedCallback(err error) bool {
	return msgs.Is(err, msgs.MsgDiscoveryNotFound) ||
		msgs.Is(err, msgs.MsgCallbackForTerminalState) ||
		msgs.Is(err, msgs.MsgCallbackUnexpectedState)
}

func (h *handlers) getParties(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	correlationID, err := h.c.Discovery().StartDiscovery(ctx, &components.StartDiscoveryRequest{
		CorrelationID: req.Header.Get(transport.HeaderCorrelationID),
		Source:        req.Header.Get(transport.HeaderSource),
		Destination:   req.Header.Get(transport.HeaderDestination),
		Party:         partyFromRequest(req),
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	w.Header().Set(transport.HeaderCorrelationID, correlationID)
	w.WriteHeader(http.StatusAccepted)
}

func (h *handlers) callbackCorrelation(req *http.Request) (string, error) {
	correlationID := req.Header.Get(transport.HeaderCorrelationID)
	if correlationID == "" {
		return "", i18n.NewError(req.Context(), msgs.MsgCorrelationIDMissing)
	}
	return correlationID, nil
}

func (h *handlers) putParties(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	correlationID, err := h.callbackCorrelation(req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var result alstypes.PartyResult
	if err := h.readJSON(ctx, w, req, &result); err != nil {
		writeError(ctx, w, err)
		return
	}
	err = h.c.Discovery().OnSuccess(ctx, correlationID, &components.SuccessCallback{
		Source: req.Header.Get(transport.HeaderSource),
		Result: &result,
	})
	if err != nil && !isDiscardedCallback(err) {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *handlers) putPartiesError(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	correlationID, err := h.callbackCorrelation(req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var body alstypes.ErrorInformationObject
	if err := h.readJSON(ctx, w, req, &body); err != nil {
		writeError(ctx, w, err)
		return
	}
	err = h.c.Discovery().OnError(ctx, correlationID, &components.ErrorCallback{
		Source:           req.Header.Get(transport.HeaderSource),
		ErrorInformation: body.ErrorInformation,
	})
	if err != nil && !isDiscardedCallback(err) {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *handlers) getDiscovery(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	dr, err := h.c.Discovery().GetDiscovery(ctx, mux.Vars(req)["correlationId"])
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, dr)
}

func (h *handlers) health(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	status := http.StatusOK
	checks := make(map[string]string, len(h.healthChecks))
	for name, check := range h.healthChecks {
		if err := check(ctx); err != nil {
			log.L(ctx).Warnf("Health check %s failed: %s", name, err)
			checks[name] = "DOWN"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "OK"
	}
	overall := "OK"
	if status != http.StatusOK {
		overall = "DOWN"
	}
	writeJSON(ctx, w, status, map[string]interface{}{
		"status":   overall,
		"services": checks,
	})
}
