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

	"gorm.io/gorm"
)

type DBTX interface {
	// Access the gORM DB object for the transaction
	DB() *gorm.DB
	// Only called after a transaction is successfully committed, for example to invalidate caches
	AddPostCommit(func(txCtx context.Context))
	// Called in all cases after the transaction completes. A non-nil error means it rolled back.
	AddFinalizer(func(txCtx context.Context, err error))
	// False for the NOTX() pseudo transaction
	FullTransaction() bool
}

type transaction struct {
	txCtx       context.Context
	gdb         *gorm.DB
	postCommits []func(txCtx context.Context)
	finalizers  []func(txCtx context.Context, err error)
}

func (t *transaction) DB() *gorm.DB {
	return t.gdb
}

func (t *transaction) AddPostCommit(fn func(txCtx context.Context)) {
	t.postCommits = append(t.postCommits, fn)
}

func (t *transaction) AddFinalizer(fn func(txCtx context.Context, err error)) {
	t.finalizers = append(t.finalizers, fn)
}

func (t *transaction) FullTransaction() bool {
	return true
}

type notx struct {
	gdb *gorm.DB
}

func (t *notx) DB() *gorm.DB {
	return t.gdb
}

func (t *notx) AddPostCommit(fn func(txCtx context.Context)) {
	panic("AddPostCommit called on NOTX")
}

func (t *notx) AddFinalizer(fn func(txCtx context.Context, err error)) {
	panic("AddFinalizer called on NOTX")
}

func (t *notx) FullTransaction() bool {
	return false
}
