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
	"time"

	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
)

type DBOracleAssociation struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	PartyIdType  string `gorm:"column:party_id_type"`
	PartyID      string `gorm:"column:party_id"`
	SubID        string `gorm:"column:sub_id"`
	Currency     string `gorm:"column:currency"`
	EndpointType string `gorm:"column:endpoint_type"`
	Value        string `gorm:"column:value"`
	IsDefault    bool   `gorm:"column:is_default"`
	IsActive     bool   `gorm:"column:is_active"`
	Speculative  bool   `gorm:"column:speculative"`
	CreatedBy    string `gorm:"column:created_by"`
	CreatedAt    int64  `gorm:"column:created_at;autoCreateTime:nano"`
}

func (DBOracleAssociation) TableName() string {
	return "oracle_associations"
}

func (dba *DBOracleAssociation) scope() alstypes.OracleScope {
	return alstypes.OracleScope{
		PartyIdType: alstypes.PartyIdType(dba.PartyIdType),
		PartyID:     dba.PartyID,
		SubID:       dba.SubID,
		Currency:    dba.Currency,
	}
}

func (dba *DBOracleAssociation) toAPI() *alstypes.OracleAssociation {
	return &alstypes.OracleAssociation{
		ID:           dba.ID,
		OracleScope:  dba.scope(),
		EndpointType: alstypes.EndpointType(dba.EndpointType),
		Value:        dba.Value,
		IsDefault:    dba.IsDefault,
		IsActive:     dba.IsActive,
		Speculative:  dba.Speculative,
		CreatedBy:    dba.CreatedBy,
		CreatedAt:    time.Unix(0, dba.CreatedAt).UTC(),
	}
}
