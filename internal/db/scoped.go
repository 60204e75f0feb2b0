// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/tracing"
)

const tenantColumn = "tenant_id"

var (
	// ErrMissingTenantScope means an operation targeted a tenant-scoped table
	// without a tenant bound to the client. This is a programming error, the
	// executor fails closed rather than running an unfiltered query.
	ErrMissingTenantScope = errors.New("operation on tenant-scoped table without a bound tenant")

	// ErrTenantColumnForbidden means a caller tried to supply tenant_id
	// itself. The executor owns that column, caller-supplied values are
	// rejected rather than silently overridden.
	ErrTenantColumnForbidden = errors.New("tenant_id must not be supplied by the caller")
)

var _ ScopedClientInterface = (*ScopedClient)(nil)

// ScopedClient decorates a DBClient with transparent tenant scoping. For
// tables in the registry every read, update and delete gets a tenant equality
// predicate conjoined onto the caller's predicate, and every insert gets the
// bound tenant injected. Unregistered tables pass through untouched.
type ScopedClient struct {
	db       DBClientInterface
	registry *TableRegistry
	tenantID string

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func NewScopedClient(db DBClientInterface, registry *TableRegistry, tracer tracing.TracingInterface, logger logging.LoggerInterface) *ScopedClient {
	return &ScopedClient{
		db:       db,
		registry: registry,
		tracer:   tracer,
		logger:   logger,
	}
}

// ForTenant returns a derived client with the tenant fixed for its lifetime.
// The receiver is not mutated.
func (c *ScopedClient) ForTenant(tenantID string) ScopedClientInterface {
	derived := *c
	derived.tenantID = tenantID
	return &derived
}

// scope conjoins the tenant predicate onto pred for registered tables. The
// caller predicate is ANDed with, never replaced by, the tenant filter.
func (c *ScopedClient) scope(table string, pred sq.Sqlizer) (sq.Sqlizer, error) {
	if !c.registry.IsTenantScoped(table) {
		return pred, nil
	}

	if c.tenantID == "" {
		return nil, fmt.Errorf("%w: table %q", ErrMissingTenantScope, table)
	}

	tenantPred := sq.Eq{tenantColumn: c.tenantID}
	if pred == nil {
		return tenantPred, nil
	}

	return sq.And{pred, tenantPred}, nil
}

func (c *ScopedClient) Query(ctx context.Context, table string, columns []string, pred sq.Sqlizer) (*sql.Rows, error) {
	ctx, span := c.tracer.Start(ctx, "db.ScopedClient.Query")
	defer span.End()

	scoped, err := c.scope(table, pred)
	if err != nil {
		return nil, err
	}

	query := c.db.Statement(ctx).
		Select(columns...).
		From(table)
	if scoped != nil {
		query = query.Where(scoped)
	}

	return query.QueryContext(ctx)
}

func (c *ScopedClient) QueryRow(ctx context.Context, table string, columns []string, pred sq.Sqlizer) (sq.RowScanner, error) {
	ctx, span := c.tracer.Start(ctx, "db.ScopedClient.QueryRow")
	defer span.End()

	scoped, err := c.scope(table, pred)
	if err != nil {
		return nil, err
	}

	query := c.db.Statement(ctx).
		Select(columns...).
		From(table)
	if scoped != nil {
		query = query.Where(scoped)
	}

	return query.QueryRowContext(ctx), nil
}

// Insert writes one or more rows. All rows must share the same column set.
// For tenant-scoped tables the bound tenant is injected into every row.
func (c *ScopedClient) Insert(ctx context.Context, table string, rows ...map[string]interface{}) (sql.Result, error) {
	ctx, span := c.tracer.Start(ctx, "db.ScopedClient.Insert")
	defer span.End()

	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %q with no rows", table)
	}

	scoped := c.registry.IsTenantScoped(table)
	if scoped && c.tenantID == "" {
		return nil, fmt.Errorf("%w: table %q", ErrMissingTenantScope, table)
	}

	columns := insertColumns(rows[0], scoped)
	query := c.db.Statement(ctx).
		Insert(table).
		Columns(columns...)

	for _, row := range rows {
		if scoped {
			if _, ok := row[tenantColumn]; ok {
				return nil, fmt.Errorf("%w: table %q", ErrTenantColumnForbidden, table)
			}
		}

		values := make([]interface{}, 0, len(columns))
		for _, col := range columns {
			if col == tenantColumn {
				values = append(values, c.tenantID)
				continue
			}
			v, ok := row[col]
			if !ok {
				return nil, fmt.Errorf("insert into %q: rows do not share columns, missing %q", table, col)
			}
			values = append(values, v)
		}
		query = query.Values(values...)
	}

	return query.ExecContext(ctx)
}

func (c *ScopedClient) Update(ctx context.Context, table string, pred sq.Sqlizer, patch map[string]interface{}) (sql.Result, error) {
	ctx, span := c.tracer.Start(ctx, "db.ScopedClient.Update")
	defer span.End()

	if c.registry.IsTenantScoped(table) {
		if _, ok := patch[tenantColumn]; ok {
			return nil, fmt.Errorf("%w: table %q", ErrTenantColumnForbidden, table)
		}
	}

	scoped, err := c.scope(table, pred)
	if err != nil {
		return nil, err
	}

	query := c.db.Statement(ctx).
		Update(table).
		SetMap(patch)
	if scoped != nil {
		query = query.Where(scoped)
	}

	return query.ExecContext(ctx)
}

func (c *ScopedClient) Delete(ctx context.Context, table string, pred sq.Sqlizer) (sql.Result, error) {
	ctx, span := c.tracer.Start(ctx, "db.ScopedClient.Delete")
	defer span.End()

	scoped, err := c.scope(table, pred)
	if err != nil {
		return nil, err
	}

	query := c.db.Statement(ctx).
		Delete(table)
	if scoped != nil {
		query = query.Where(scoped)
	}

	return query.ExecContext(ctx)
}

// insertColumns yields a deterministic column order, with tenant_id appended
// for scoped tables.
func insertColumns(row map[string]interface{}, scoped bool) []string {
	columns := make([]string, 0, len(row)+1)
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	if scoped {
		columns = append(columns, tenantColumn)
	}
	return columns
}
