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

import "github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"

type DBParticipantEndpoint struct {
	FspID        string `gorm:"column:fsp_id;primaryKey"`
	EndpointType string `gorm:"column:endpoint_type;primaryKey"`
	Value        string `gorm:"column:value"`
	UpdatedAt    int64  `gorm:"column:updated_at;autoUpdateTime:nano"`
}

func (DBParticipantEndpoint) TableName() string {
	return "participant_endpoints"
}

func (dbe *DBParticipantEndpoint) toAPI() *alstypes.ParticipantEndpoint {
	return &alstypes.ParticipantEndpoint{
		FspID: dbe.FspID,
		Type:  alstypes.EndpointType(dbe.EndpointType),
		Value: dbe.Value,
	}
}

type endpointKey struct {
	fspID        string
	endpointType alstypes.EndpointType
}
