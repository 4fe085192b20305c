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

package oraclemgr

import (
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/cache"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/persistence"
	"gorm.io/gorm"
)

const cacheName = "oracle"

type oracleManager struct {
	bgCtx       context.Context
	conf        *alsconf.CacheConfig
	persistence persistence.Persistence

	// One entry per scope tuple. A nil value records that the scope has no active association.
	scopeCache cache.Cache[alstypes.OracleScope, *alstypes.OracleAssociation]
}

func NewOracleManager(bgCtx context.Context, conf *alsconf.CacheConfig) components.OracleManager {
	return &oracleManager{
		bgCtx: log.WithComponent(bgCtx, "oraclemgr"),
		conf:  conf,
	}
}

func (om *oracleManager) PreInit(pic components.PreInitComponents) (*components.ManagerInitResult, error) {
	om.persistence = pic.Persistence()
	om.scopeCache = cache.NewCache[alstypes.OracleScope, *alstypes.OracleAssociation](cacheName, om.conf, alsconf.OracleCacheDefaults, pic.MetricsManager().CacheObserver())
	return &components.ManagerInitResult{
		HealthChecks: map[string]components.HealthCheck{
			"oracleRegistry": om.ping,
		},
	}, nil
}

func (om *oracleManager) PostInit(c components.AllComponents) error { return nil }

func (om *oracleManager) Start() error { return nil }

func (om *oracleManager) Stop() {}

func (om *oracleManager) ping(ctx context.Context) error {
	var n int64
	if err := om.persistence.DB().WithContext(ctx).Model(&DBOracleAssociation{}).Limit(1).Count(&n).Error; err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgOracleRegistryUnavailable)
	}
	return nil
}

func (om *oracleManager) FindAssociation(ctx context.Context, party alstypes.PartyIdentifier) (*alstypes.OracleAssociation, error) {
	if err := party.Validate(ctx); err != nil {
		return nil, err
	}
	for _, scope := range party.Scopes() {
		a, err := om.scopeCache.Get(ctx, scope, func(ctx context.Context) (*alstypes.OracleAssociation, error) {
			return om.queryScope(ctx, scope)
		})
		if err != nil {
			return nil, err
		}
		if a != nil {
			log.L(ctx).Debugf("Party %s resolved to %s at scope %s", party, a.Value, scope)
			cp := *a
			return &cp, nil
		}
	}
	return nil, i18n.NewError(ctx, msgs.MsgOracleAssociationNotFound, party)
}

func (om *oracleManager) whereScope(db *gorm.DB, scope alstypes.OracleScope) *gorm.DB {
	return db.
		Where("party_id_type = ?", scope.PartyIdType).
		Where("party_id = ?", scope.PartyID).
		Where("sub_id = ?", scope.SubID).
		Where("currency = ?", scope.Currency)
}

// queryScope picks the default, else the oldest, of the active associations at exactly this scope
func (om *oracleManager) queryScope(ctx context.Context, scope alstypes.OracleScope) (*alstypes.OracleAssociation, error) {
	var rows []*DBOracleAssociation
	err := om.whereScope(om.persistence.DB().WithContext(ctx), scope).
		Where("is_active = ?", true).
		Order("is_default DESC").
		Order("created_at ASC").
		Order("id ASC").
		Limit(1).
		Find(&rows).
		Error
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgOracleRegistryUnavailable)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toAPI(), nil
}

func (om *oracleManager) CreateAssociation(ctx context.Context, na *alstypes.NewOracleAssociation) (*alstypes.OracleAssociation, error) {
	if err := na.Validate(ctx); err != nil {
		return nil, err
	}
	row := &DBOracleAssociation{
		PartyIdType:  string(na.PartyIdType),
		PartyID:      na.PartyID,
		SubID:        na.SubID,
		Currency:     na.Currency,
		EndpointType: string(na.EndpointType),
		Value:        na.Value,
		IsDefault:    na.IsDefault,
		IsActive:     true,
		Speculative:  na.Speculative,
		CreatedBy:    na.CreatedBy,
	}
	err := om.persistence.Transaction(ctx, func(ctx context.Context, dbTX persistence.DBTX) error {
		if na.IsDefault {
			// two equally specific defaults are a configuration error, so we refuse the second
			if err := om.persistence.TakeNamedLock(ctx, dbTX, "oracle_default:"+na.OracleScope.String()); err != nil {
				return err
			}
			var existing []*DBOracleAssociation
			err := om.whereScope(dbTX.DB(), na.OracleScope).
				Where("is_active = ?", true).
				Where("is_default = ?", true).
				Limit(1).
				Find(&existing).
				Error
			if err != nil {
				return i18n.WrapError(ctx, err, msgs.MsgOracleRegistryUnavailable)
			}
			if len(existing) > 0 {
				return i18n.NewError(ctx, msgs.MsgOracleDuplicateDefault, na.OracleScope, existing[0].Value)
			}
		}
		if err := dbTX.DB().Create(row).Error; err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgOracleRegistryUnavailable)
		}
		dbTX.AddPostCommit(func(txCtx context.Context) {
			om.scopeCache.Delete(na.OracleScope)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Created oracle association %d %s -> %s (default=%t speculative=%t)", row.ID, na.OracleScope, na.Value, na.IsDefault, na.Speculative)
	return row.toAPI(), nil
}

func (om *oracleManager) updatePartyScoped(ctx context.Context, party alstypes.PartyIdentifier, fspID string, updates map[string]interface{}) error {
	if err := party.Validate(ctx); err != nil {
		return err
	}
	if fspID == "" {
		return i18n.NewError(ctx, msgs.MsgFspIdMissing)
	}
	scope := party.PartyScope()
	return om.persistence.Transaction(ctx, func(ctx context.Context, dbTX persistence.DBTX) error {
		res := om.whereScope(dbTX.DB().Model(&DBOracleAssociation{}), scope).
			Where("value = ?", fspID).
			Where("is_active = ?", true).
			Where("speculative = ?", true).
			Updates(updates)
		if res.Error != nil {
			return i18n.WrapError(ctx, res.Error, msgs.MsgOracleRegistryUnavailable)
		}
		log.L(ctx).Infof("Updated %d speculative associations %s -> %s: %v", res.RowsAffected, scope, fspID, updates)
		dbTX.AddPostCommit(func(txCtx context.Context) {
			om.scopeCache.Delete(scope)
		})
		return nil
	})
}

func (om *oracleManager) DeactivateAssociation(ctx context.Context, party alstypes.PartyIdentifier, fspID string) error {
	return om.updatePartyScoped(ctx, party, fspID, map[string]interface{}{"is_active": false})
}

func (om *oracleManager) ConfirmAssociation(ctx context.Context, party alstypes.PartyIdentifier, fspID string) error {
	return om.updatePartyScoped(ctx, party, fspID, map[string]interface{}{"speculative": false})
}

func (om *oracleManager) ListAssociations(ctx context.Context, partyIdType alstypes.PartyIdType) ([]*alstypes.OracleAssociation, error) {
	q := om.persistence.DB().WithContext(ctx).Order("id ASC")
	if partyIdType != "" {
		q = q.Where("party_id_type = ?", partyIdType)
	}
	var rows []*DBOracleAssociation
	if err := q.Find(&rows).Error; err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgOracleRegistryUnavailable)
	}
	results := make([]*alstypes.OracleAssociation, len(rows))
	for i, r := range rows {
		results[i] = r.toAPI()
	}
	return results, nil
}

func (om *oracleManager) RemoveAssociation(ctx context.Context, id uint64) error {
	return om.persistence.Transaction(ctx, func(ctx context.Context, dbTX persistence.DBTX) error {
		var rows []*DBOracleAssociation
		if err := dbTX.DB().Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgOracleRegistryUnavailable)
		}
		if len(rows) == 0 {
			return i18n.NewError(ctx, msgs.MsgOracleAssociationNotFound, id)
		}
		err := dbTX.DB().Model(&DBOracleAssociation{}).Where("id = ?", id).Update("is_active", false).Error
		if err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgOracleRegistryUnavailable)
		}
		scope := rows[0].scope()
		dbTX.AddPostCommit(func(txCtx context.Context) {
			om.scopeCache.Delete(scope)
		})
		return nil
	})
}
