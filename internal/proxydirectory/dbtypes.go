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

type DBProxyMapping struct {
	FspID     string `gorm:"column:fsp_id;primaryKey"`
	ProxyID   string `gorm:"column:proxy_id"`
	CreatedAt int64  `gorm:"column:created_at;autoCreateTime:nano"`
}

func (DBProxyMapping) TableName() string {
	return "proxy_mappings"
}
