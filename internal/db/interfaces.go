// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

type DBClientInterface interface {
	Statement(context.Context) sq.StatementBuilderType
	TxStatement(context.Context) (TxInterface, sq.StatementBuilderType, error)
	BeginTx(context.Context) (context.Context, TxInterface, error)
	WithTx(context.Context, func(context.Context) error) error
	Close()
}

type TxInterface interface {
	Commit() error
	Rollback() error
	sq.BaseRunner
}

// ScopedClientInterface is the tenant-scoped query executor. It exposes the
// four persistence primitives over a base client; tables registered as
// tenant-scoped are transparently filtered and tagged with the bound tenant.
type ScopedClientInterface interface {
	ForTenant(tenantID string) ScopedClientInterface
	Query(ctx context.Context, table string, columns []string, pred sq.Sqlizer) (*sql.Rows, error)
	QueryRow(ctx context.Context, table string, columns []string, pred sq.Sqlizer) (sq.RowScanner, error)
	Insert(ctx context.Context, table string, rows ...map[string]interface{}) (sql.Result, error)
	Update(ctx context.Context, table string, pred sq.Sqlizer, patch map[string]interface{}) (sql.Result, error)
	Delete(ctx context.Context, table string, pred sq.Sqlizer) (sql.Result, error)
}
