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
	"database/sql"

	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
	gormPostgres "gorm.io/driver/postgres"
	gormSQLite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dialect binds a registry database type to its gorm driver, its migration driver and its named lock
type Dialect struct {
	Name      string
	Defaults  *alsconf.SQLDBConfig
	Open      func(dsn string) gorm.Dialector
	Migrator  func(db *sql.DB) (migratedb.Driver, error)
	NamedLock func(dbTX DBTX, lockName string) error
}

// Postgres is the clustered registry store. Every ALS instance shares it, so the named lock is an
// advisory lock held until the enclosing transaction ends.
var Postgres = &Dialect{
	Name: TypePostgres,
	Defaults: &alsconf.SQLDBConfig{
		MaxOpenConns:    confutil.P(50),
		MaxIdleConns:    confutil.P(10),
		ConnMaxIdleTime: confutil.P("60s"),
		ConnMaxLifetime: confutil.P("30m"),
		StatementCache:  confutil.P(true),
	},
	Open: gormPostgres.Open,
	Migrator: func(db *sql.DB) (migratedb.Driver, error) {
		return migratepostgres.WithInstance(db, &migratepostgres.Config{MigrationsTable: "als_schema_migrations"})
	},
	NamedLock: func(dbTX DBTX, lockName string) error {
		return dbTX.DB().Exec(`SELECT pg_advisory_xact_lock( ? )`, lockKey(lockName)).Error
	},
}

// SQLite serves a single instance (and the unit tests) over one connection, where writers are already serialized
var SQLite = &Dialect{
	Name: TypeSQLite,
	Defaults: &alsconf.SQLDBConfig{
		MaxOpenConns:    confutil.P(1),
		MaxIdleConns:    confutil.P(1),
		ConnMaxIdleTime: confutil.P("0"),
		ConnMaxLifetime: confutil.P("0"),
		StatementCache:  confutil.P(false),
	},
	Open: gormSQLite.Open,
	Migrator: func(db *sql.DB) (migratedb.Driver, error) {
		return migratesqlite3.WithInstance(db, &migratesqlite3.Config{MigrationsTable: "als_schema_migrations"})
	},
	NamedLock: func(DBTX, string) error { return nil },
}
