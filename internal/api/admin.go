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
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
)

func (h *handlers) postOracle(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var na alstypes.NewOracleAssociation
	if err := h.readJSON(ctx, w, req, &na); err != nil {
		writeError(ctx, w, err)
		return
	}
	assoc, err := h.c.OracleManager().CreateAssociation(ctx, &na)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, assoc)
}

func (h *handlers) listOracles(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	assocs, err := h.c.OracleManager().ListAssociations(ctx, alstypes.PartyIdType(req.URL.Query().Get("type")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, assocs)
}

func (h *handlers) deleteOracle(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	// the route only matches digits
	id, _ := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err := h.c.OracleManager().RemoveAssociation(ctx, id); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type endpointBody struct {
	Type  alstypes.EndpointType `json:"type"`
	Value string                `json:"value"`
}

func (h *handlers) putEndpoint(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var body endpointBody
	if err := h.readJSON(ctx, w, req, &body); err != nil {
		writeError(ctx, w, err)
		return
	}
	pe := &alstypes.ParticipantEndpoint{FspID: mux.Vars(req)["fspId"], Type: body.Type, Value: body.Value}
	if err := h.c.EndpointManager().UpsertEndpoint(ctx, pe); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, pe)
}

func (h *handlers) listEndpoints(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	endpoints, err := h.c.EndpointManager().ListEndpoints(ctx, mux.Vars(req)["fspId"])
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, endpoints)
}

type proxyBody struct {
	ProxyID string `json:"proxyId"`
}

func (h *handlers) putProxy(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var body proxyBody
	if err := h.readJSON(ctx, w, req, &body); err != nil {
		writeError(ctx, w, err)
		return
	}
	pm := &alstypes.ProxyMapping{FspID: mux.Vars(req)["fspId"], ProxyID: body.ProxyID}
	if err := h.c.ProxyDirectory().RegisterMapping(ctx, pm); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, pm)
}

func (h *handlers) deleteProxy(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	if err := h.c.ProxyDirectory().RemoveMapping(ctx, mux.Vars(req)["fspId"]); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listProxies(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	proxies, err := h.c.ProxyDirectory().ListProxies(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, proxies)
}
