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

package proxydirectory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/persistence"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/retry"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm/clause"
)

type proxyDirectory struct {
	bgCtx        context.Context
	conf         *alsconf.ProxyCacheConfig
	startupRetry *retry.Retry

	persistence persistence.Persistence
	redis       redis.UniversalClient
	keyPrefix   string
	ttl         time.Duration
}

func NewProxyDirectory(bgCtx context.Context, conf *alsconf.ProxyCacheConfig, startupRetry *alsconf.RetryConfigWithMax) components.ProxyDirectory {
	return &proxyDirectory{
		bgCtx:        log.WithComponent(bgCtx, "proxydirectory"),
		conf:         conf,
		startupRetry: retry.NewRetryLimited(startupRetry, &alsconf.StartupConfigDefaults.ProxyCacheConnectRetry),
		keyPrefix:    confutil.Value(conf.KeyPrefix, *alsconf.ProxyCacheDefaults.KeyPrefix),
		ttl:          confutil.DurationMin(conf.TTL, time.Second, *alsconf.ProxyCacheDefaults.TTL),
	}
}

func (pd *proxyDirectory) PreInit(pic components.PreInitComponents) (*components.ManagerInitResult, error) {
	pd.persistence = pic.Persistence()
	addrs := confutil.Slice(pd.conf.Addresses, alsconf.ProxyCacheDefaults.Addresses)
	if len(addrs) == 0 {
		return nil, i18n.NewError(pd.bgCtx, msgs.MsgConfigRedisNoAddresses)
	}
	// a single address gives a plain client, several give a cluster client
	pd.redis = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       addrs,
		Username:    pd.conf.Username,
		Password:    pd.conf.Password,
		DB:          confutil.Min(pd.conf.DB, 0, *alsconf.ProxyCacheDefaults.DB),
		DialTimeout: confutil.DurationMin(pd.conf.DialTimeout, 0, *alsconf.ProxyCacheDefaults.DialTimeout),
	})
	return &components.ManagerInitResult{
		HealthChecks: map[string]components.HealthCheck{
			"proxyCache": pd.ping,
		},
	}, nil
}

func (pd *proxyDirectory) PostInit(c components.AllComponents) error { return nil }

func (pd *proxyDirectory) Start() error {
	return pd.startupRetry.Do(pd.bgCtx, func(attempt int) (bool, error) {
		return true, pd.ping(pd.bgCtx)
	})
}

func (pd *proxyDirectory) Stop() {
	if pd.redis != nil {
		_ = pd.redis.Close()
	}
}

func (pd *proxyDirectory) ping(ctx context.Context) error {
	if err := pd.redis.Ping(ctx).Err(); err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgProxyCacheConnectFailed)
	}
	return nil
}

func (pd *proxyDirectory) mappingKey(fspID string) string {
	return pd.keyPrefix + "proxy:" + fspID
}

func (pd *proxyDirectory) proxiesKey() string {
	return pd.keyPrefix + "proxies"
}

func (pd *proxyDirectory) ResolveProxy(ctx context.Context, fspID string) (string, error) {
	if fspID == "" {
		return "", i18n.NewError(ctx, msgs.MsgFspIdMissing)
	}
	key := pd.mappingKey(fspID)
	proxyID, err := pd.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		return proxyID, nil
	case !errors.Is(err, redis.Nil):
		log.L(ctx).Warnf("Proxy cache read for %s failed, falling back to registry: %s", fspID, err)
	}

	var rows []*DBProxyMapping
	err = pd.persistence.DB().WithContext(ctx).Where("fsp_id = ?", fspID).Limit(1).Find(&rows).Error
	if err != nil {
		return "", i18n.WrapError(ctx, err, msgs.MsgProxyRegistryUnavailable)
	}
	if len(rows) == 0 {
		return "", i18n.NewError(ctx, msgs.MsgProxyNotFound, fspID)
	}
	proxyID = rows[0].ProxyID
	if err := pd.redis.Set(ctx, key, proxyID, pd.ttl).Err(); err != nil {
		log.L(ctx).Warnf("Proxy cache write for %s failed: %s", fspID, err)
	}
	return proxyID, nil
}

func (pd *proxyDirectory) RegisterMapping(ctx context.Context, pm *alstypes.ProxyMapping) error {
	if err := pm.Validate(ctx); err != nil {
		return err
	}
	row := &DBProxyMapping{FspID: pm.FspID, ProxyID: pm.ProxyID}
	err := pd.persistence.Transaction(ctx, func(ctx context.Context, dbTX persistence.DBTX) error {
		err := dbTX.DB().
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "fsp_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"proxy_id"}),
			}).
			Create(row).
			Error
		if err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgProxyRegistryUnavailable)
		}
		dbTX.AddPostCommit(func(txCtx context.Context) {
			pipe := pd.redis.TxPipeline()
			pipe.Set(txCtx, pd.mappingKey(pm.FspID), pm.ProxyID, pd.ttl)
			pipe.Del(txCtx, pd.proxiesKey())
			if _, err := pipe.Exec(txCtx); err != nil {
				log.L(txCtx).Warnf("Proxy cache update for %s failed: %s", pm.FspID, err)
			}
		})
		return nil
	})
	if err == nil {
		log.L(ctx).Infof("Participant %s now reachable via proxy %s", pm.FspID, pm.ProxyID)
	}
	return err
}

func (pd *proxyDirectory) RemoveMapping(ctx context.Context, fspID string) error {
	if fspID == "" {
		return i18n.NewError(ctx, msgs.MsgFspIdMissing)
	}
	return pd.persistence.Transaction(ctx, func(ctx context.Context, dbTX persistence.DBTX) error {
		res := dbTX.DB().Where("fsp_id = ?", fspID).Delete(&DBProxyMapping{})
		if res.Error != nil {
			return i18n.WrapError(ctx, res.Error, msgs.MsgProxyRegistryUnavailable)
		}
		if res.RowsAffected == 0 {
			return i18n.NewError(ctx, msgs.MsgProxyNotFound, fspID)
		}
		dbTX.AddPostCommit(func(txCtx context.Context) {
			if err := pd.redis.Del(txCtx, pd.mappingKey(fspID), pd.proxiesKey()).Err(); err != nil {
				log.L(txCtx).Warnf("Proxy cache delete for %s failed: %s", fspID, err)
			}
		})
		return nil
	})
}

func (pd *proxyDirectory) ListProxies(ctx context.Context) ([]string, error) {
	proxies, err := pd.redis.SMembers(ctx, pd.proxiesKey()).Result()
	if err == nil && len(proxies) > 0 {
		sort.Strings(proxies)
		return proxies, nil
	}
	if err != nil {
		log.L(ctx).Warnf("Proxy list cache read failed, falling back to registry: %s", err)
	}

	proxies = []string{}
	err = pd.persistence.DB().WithContext(ctx).
		Model(&DBProxyMapping{}).
		Distinct("proxy_id").
		Order("proxy_id").
		Pluck("proxy_id", &proxies).
		Error
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgProxyRegistryUnavailable)
	}
	if len(proxies) > 0 {
		members := make([]interface{}, len(proxies))
		for i, p := range proxies {
			members[i] = p
		}
		pipe := pd.redis.TxPipeline()
		pipe.SAdd(ctx, pd.proxiesKey(), members...)
		pipe.Expire(ctx, pd.proxiesKey(), pd.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			log.L(ctx).Warnf("Proxy list cache write failed: %s", err)
		}
	}
	return proxies, nil
}
