// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenancy-service/internal/db"
	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

var tenantColumns = []string{
	"id", "name", "slug", "description", "website", "industry",
	"address", "city", "state", "country", "postal_code", "phone",
	"email", "logo_url", "enabled", "created_at", "updated_at",
}

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	var newTenant types.Tenant
	err = s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "name", "slug", "description", "website", "industry", "enabled").
		Values(id.String(), t.Name, t.Slug, t.Description, t.Website, t.Industry, true).
		Suffix("RETURNING " + joinColumns(tenantColumns)).
		QueryRowContext(ctx).
		Scan(tenantFields(&newTenant)...)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateKeyError(err, "tenant slug already exists")
		}
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return &newTenant, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	var t types.Tenant
	err := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(tenantFields(&t)...)

	if err != nil {
		if IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &t, nil
}

func (s *Storage) ListTenantsByUserID(ctx context.Context, userID string) ([]*types.UserTenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenantsByUserID")
	defer span.End()

	columns := make([]string, 0, len(tenantColumns)+2)
	for _, c := range tenantColumns {
		columns = append(columns, "t."+c)
	}
	columns = append(columns, "m.role", "m.is_owner")

	query := s.db.Statement(ctx).
		Select(columns...).
		From("tenants t").
		Join("memberships m ON t.id = m.tenant_id").
		Where(sq.Eq{
			"m.user_id": userID,
			"m.status":  types.MembershipActive,
			"t.enabled": true,
		}).
		OrderBy("t.created_at")

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*types.UserTenant
	for rows.Next() {
		var t types.UserTenant
		fields := append(tenantFields(&t.Tenant), &t.Role, &t.IsOwner)
		if err := rows.Scan(fields...); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tenants, nil
}

// UpdateTenant applies the provided column/value pairs. The whitelist of
// mutable fields is enforced by the service layer.
func (s *Storage) UpdateTenant(ctx context.Context, id string, fields map[string]interface{}) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTenant")
	defer span.End()

	if len(fields) == 0 {
		return nil
	}

	fields["updated_at"] = sq.Expr("now()")

	res, err := s.db.Statement(ctx).
		Update("tenants").
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) SetTenantLogo(ctx context.Context, id, logoURL string) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetTenantLogo")
	defer span.End()

	return s.UpdateTenant(ctx, id, map[string]interface{}{"logo_url": logoURL})
}

func joinColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

func tenantFields(t *types.Tenant) []interface{} {
	return []interface{}{
		&t.ID, &t.Name, &t.Slug, &t.Description, &t.Website, &t.Industry,
		&t.Address, &t.City, &t.State, &t.Country, &t.PostalCode, &t.Phone,
		&t.Email, &t.LogoURL, &t.Enabled, &t.CreatedAt, &t.UpdatedAt,
	}
}
