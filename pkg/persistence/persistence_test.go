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
	"database/sql/driver"
	"fmt"
	"os"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alsconf"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/confutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestPersistenceTypes(t *testing.T) {
	ctx := context.Background()

	_, err := NewPersistence(ctx, &alsconf.DBConfig{})
	assert.Regexp(t, "AL010201", err)

	_, err = NewPersistence(ctx, &alsconf.DBConfig{Type: "postgres"})
	assert.Regexp(t, "AL010201", err)

	_, err = NewPersistence(ctx, &alsconf.DBConfig{Type: "wrong"})
	assert.Regexp(t, "AL010200.*wrong", err)
}

func TestLockKeyAlwaysPositive(t *testing.T) {
	require.Equal(t, int64(1793351735952061022), lockKey("aaa"))
	require.Equal(t, int64(18883120392660901), lockKey("bbb"))
}

func TestMigrationMissingDir(t *testing.T) {
	_, err := OpenDialect(context.Background(), SQLite, &alsconf.SQLDBConfig{
		DSN:         ":memory:",
		AutoMigrate: confutil.P(true),
	})
	assert.Regexp(t, "AL010203", err)
}

func TestMigrationBadDir(t *testing.T) {
	tempFile := t.TempDir() + "/wrong"
	require.NoError(t, os.WriteFile(tempFile, []byte{}, 0664))
	_, err := OpenDialect(context.Background(), SQLite, &alsconf.SQLDBConfig{
		DSN:           ":memory:",
		AutoMigrate:   confutil.P(true),
		MigrationsDir: tempFile,
		DebugQueries:  true,
	})
	assert.Regexp(t, "AL010204", err)
}

func TestUnitTestPersistenceTablesExist(t *testing.T) {
	ctx := context.Background()
	p, done, err := NewUnitTestPersistence(ctx)
	require.NoError(t, err)
	defer done()

	for _, table := range []string{"oracle_associations", "participant_endpoints", "proxy_mappings"} {
		assert.True(t, p.DB().Migrator().HasTable(table), table)
	}
	require.NoError(t, p.TakeNamedLock(ctx, p.NOTX(), "any"))
}

func TestTransactionPostCommitAndFinalizers(t *testing.T) {
	ctx := context.Background()
	p, done, err := NewUnitTestPersistence(ctx)
	require.NoError(t, err)
	defer done()

	postCommitted := false
	var finalErr error
	finalized := false
	err = p.Transaction(ctx, func(ctx context.Context, dbTX DBTX) error {
		assert.True(t, dbTX.FullTransaction())
		dbTX.AddPostCommit(func(txCtx context.Context) { postCommitted = true })
		dbTX.AddFinalizer(func(txCtx context.Context, err error) { finalized = true; finalErr = err })
		return dbTX.DB().Exec(`INSERT INTO proxy_mappings (fsp_id, proxy_id, created_at) VALUES (?, ?, ?)`, "a", "b", 1).Error
	})
	require.NoError(t, err)
	assert.True(t, postCommitted)
	assert.True(t, finalized)
	assert.NoError(t, finalErr)

	postCommitted = false
	err = p.Transaction(ctx, func(ctx context.Context, dbTX DBTX) error {
		dbTX.AddPostCommit(func(txCtx context.Context) { postCommitted = true })
		dbTX.AddFinalizer(func(txCtx context.Context, err error) { finalErr = err })
		return fmt.Errorf("pop")
	})
	assert.EqualError(t, err, "pop")
	assert.False(t, postCommitted)
	assert.EqualError(t, finalErr, "pop")
}

func TestTransactionPanicRethrown(t *testing.T) {
	ctx := context.Background()
	p, done, err := NewUnitTestPersistence(ctx)
	require.NoError(t, err)
	defer done()

	assert.Panics(t, func() {
		_ = p.Transaction(ctx, func(ctx context.Context, dbTX DBTX) error {
			panic("pop")
		})
	})
}

func TestNOTXRejectsHandlers(t *testing.T) {
	ctx := context.Background()
	p, done, err := NewUnitTestPersistence(ctx)
	require.NoError(t, err)
	defer done()

	tx := p.NOTX()
	assert.False(t, tx.FullTransaction())
	assert.NotNil(t, tx.DB())
	assert.Panics(t, func() { tx.AddPostCommit(func(txCtx context.Context) {}) })
	assert.Panics(t, func() { tx.AddFinalizer(func(txCtx context.Context, err error) {}) })
}

func TestPostgresDialect(t *testing.T) {
	assert.Equal(t, "postgres", Postgres.Name)
	assert.Equal(t, "*postgres.Dialector", reflect.TypeOf(Postgres.Open("")).String())
	db, mdb, _ := sqlmock.New()
	_, err := Postgres.Migrator(db)
	assert.Error(t, err)

	mdb.ExpectBegin()
	mdb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(driver.ResultNoRows)
	mdb.ExpectCommit()

	gdb, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	gp := &provider{d: Postgres, gdb: gdb, conf: &alsconf.SQLDBConfig{}}
	err = gp.Transaction(context.Background(), func(ctx context.Context, dbTX DBTX) error {
		return gp.TakeNamedLock(ctx, dbTX, "any")
	})
	require.NoError(t, err)
	assert.NoError(t, mdb.ExpectationsWereMet())
}

func TestNamedLockFailureWrapped(t *testing.T) {
	db, mdb, _ := sqlmock.New()
	gdb, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	gp := &provider{d: Postgres, gdb: gdb, conf: &alsconf.SQLDBConfig{}}

	mdb.ExpectBegin()
	mdb.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnError(fmt.Errorf("locked out"))
	mdb.ExpectRollback()
	err = gp.Transaction(context.Background(), func(ctx context.Context, dbTX DBTX) error {
		return gp.TakeNamedLock(ctx, dbTX, "oracle")
	})
	assert.Regexp(t, "AL010205.*oracle", err)
}
