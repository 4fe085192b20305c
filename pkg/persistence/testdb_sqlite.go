// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package persistence

import (
	"context"

	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
)

// NewUnitTestPersistence returns an in-memory DB with the real migrations applied,
// for unit tests in packages two levels below the repository root
func NewUnitTestPersistence(ctx context.Context) (Persistence, func(), error) {
	p, err := OpenDialect(ctx, SQLite, &alsconf.SQLDBConfig{
		DSN:           ":memory:",
		AutoMigrate:   confutil.P(true),
		MigrationsDir: "../../db/migrations/sqlite",
	})
	if err != nil {
		return nil, func() {}, err
	}
	return p, p.Close, nil
}
