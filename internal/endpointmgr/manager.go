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

package endpointmgr

import (
	"context"
	"net/url"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/cache"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/persistence"
	"gorm.io/gorm/clause"
)

const cacheName = "endpoint"

type endpointManager struct {
	bgCtx       context.Context
	conf        *alsconf.CacheConfig
	persistence persistence.Persistence

	endpointCache cache.Cache[endpointKey, string]
}

func NewEndpointManager(bgCtx context.Context, conf *alsconf.CacheConfig) components.EndpointManager {
	return &endpointManager{
		bgCtx: log.WithComponent(bgCtx, "endpointmgr"),
		conf:  conf,
	}
}

func (em *endpointManager) PreInit(pic components.PreInitComponents) (*components.ManagerInitResult, error) {
	em.persistence = pic.Persistence()
	em.endpointCache = cache.NewCache[endpointKey, string](cacheName, em.conf, alsconf.EndpointCacheDefaults, pic.MetricsManager().CacheObserver())
	return &components.ManagerInitResult{}, nil
}

func (em *endpointManager) PostInit(c components.AllComponents) error { return nil }

func (em *endpointManager) Start() error { return nil }

func (em *endpointManager) Stop() {}

func (em *endpointManager) ResolveEndpoint(ctx context.Context, fspID string, endpointType alstypes.EndpointType) (string, error) {
	if fspID == "" {
		return "", i18n.NewError(ctx, msgs.MsgFspIdMissing)
	}
	if err := endpointType.Validate(ctx); err != nil {
		return "", err
	}
	key := endpointKey{fspID: fspID, endpointType: endpointType}
	return em.endpointCache.Get(ctx, key, func(ctx context.Context) (string, error) {
		var rows []*DBParticipantEndpoint
		err := em.persistence.DB().WithContext(ctx).
			Where("fsp_id = ?", fspID).
			Where("endpoint_type = ?", endpointType).
			Limit(1).
			Find(&rows).
			Error
		if err != nil {
			return "", i18n.WrapError(ctx, err, msgs.MsgEndpointRegistryUnavailable)
		}
		if len(rows) == 0 {
			// not cached, a newly registered endpoint is picked up on the next call
			return "", i18n.NewError(ctx, msgs.MsgEndpointNotFound, fspID, endpointType)
		}
		return rows[0].Value, nil
	})
}

func (em *endpointManager) RenderEndpoint(ctx context.Context, fspID string, endpointType alstypes.EndpointType, party alstypes.PartyIdentifier) (string, error) {
	tmpl, err := em.ResolveEndpoint(ctx, fspID, endpointType)
	if err != nil {
		return "", err
	}
	rendered, err := renderTemplate(tmpl, party)
	if err != nil {
		return "", i18n.WrapError(ctx, err, msgs.MsgEndpointURLInvalid, tmpl)
	}
	if _, err := url.ParseRequestURI(rendered); err != nil {
		return "", i18n.WrapError(ctx, err, msgs.MsgEndpointURLInvalid, rendered)
	}
	return rendered, nil
}

// renderTemplate expands {{partyIdType}}, {{partyIdentifier}} and {{partySubIdOrType}} (path escaped),
// plus the sprig function library, in an endpoint value
func renderTemplate(tmpl string, party alstypes.PartyIdentifier) (string, error) {
	t, err := template.New("").
		Option("missingkey=error").
		Funcs(sprig.HermeticTxtFuncMap()).
		Funcs(template.FuncMap{
			"partyIdType":      func() string { return url.PathEscape(string(party.Type)) },
			"partyIdentifier":  func() string { return url.PathEscape(party.ID) },
			"partySubIdOrType": func() string { return url.PathEscape(party.SubID) },
		}).
		Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := t.Execute(&buf, nil); err != nil {
		return "", err
	}
	// an empty sub-id leaves a trailing separator behind
	return strings.TrimSuffix(buf.String(), "/"), nil
}

func (em *endpointManager) UpsertEndpoint(ctx context.Context, pe *alstypes.ParticipantEndpoint) error {
	if err := pe.Validate(ctx); err != nil {
		return err
	}
	row := &DBParticipantEndpoint{
		FspID:        pe.FspID,
		EndpointType: string(pe.Type),
		Value:        pe.Value,
	}
	err := em.persistence.Transaction(ctx, func(ctx context.Context, dbTX persistence.DBTX) error {
		err := dbTX.DB().
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "fsp_id"}, {Name: "endpoint_type"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).
			Create(row).
			Error
		if err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgEndpointRegistryUnavailable)
		}
		dbTX.AddPostCommit(func(txCtx context.Context) {
			em.endpointCache.Delete(endpointKey{fspID: pe.FspID, endpointType: pe.Type})
		})
		return nil
	})
	if err == nil {
		log.L(ctx).Infof("Endpoint %s for %s set to %s", pe.Type, pe.FspID, pe.Value)
	}
	return err
}

func (em *endpointManager) ListEndpoints(ctx context.Context, fspID string) ([]*alstypes.ParticipantEndpoint, error) {
	var rows []*DBParticipantEndpoint
	err := em.persistence.DB().WithContext(ctx).
		Where("fsp_id = ?", fspID).
		Order("endpoint_type").
		Find(&rows).
		Error
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEndpointRegistryUnavailable)
	}
	endpoints := make([]*alstypes.ParticipantEndpoint, len(rows))
	for i, r := range rows {
		endpoints[i] = r.toAPI()
	}
	return endpoints, nil
}
