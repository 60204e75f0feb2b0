// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenancy-service/internal/types"
)

var membershipColumns = []string{
	"id", "tenant_id", "user_id", "email", "role", "is_owner", "status",
	"created_at", "updated_at",
}

func membershipFields(m *types.Membership) []interface{} {
	return []interface{}{
		&m.ID, &m.TenantID, &m.UserID, &m.Email, &m.Role, &m.IsOwner,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	}
}

// AddMember inserts a membership row. Uniqueness of (tenant_id, user_id) and
// of the owner flag per tenant is guaranteed by database constraints, a
// violation surfaces as ErrDuplicateKey.
func (s *Storage) AddMember(ctx context.Context, m *types.Membership) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AddMember")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate membership ID: %w", err)
	}

	var created types.Membership
	err = s.db.Statement(ctx).
		Insert("memberships").
		Columns("id", "tenant_id", "user_id", "email", "role", "is_owner", "status").
		Values(id.String(), m.TenantID, m.UserID, strings.ToLower(m.Email), m.Role, m.IsOwner, types.MembershipActive).
		Suffix("RETURNING " + joinColumns(membershipColumns)).
		QueryRowContext(ctx).
		Scan(membershipFields(&created)...)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		if IsForeignKeyViolation(err) {
			return nil, ErrForeignKeyViolation
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return &created, nil
}

func (s *Storage) GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMembership")
	defer span.End()

	var m types.Membership
	err := s.db.Statement(ctx).
		Select(membershipColumns...).
		From("memberships").
		Where(sq.Eq{
			"tenant_id": tenantID,
			"user_id":   userID,
		}).
		QueryRowContext(ctx).
		Scan(membershipFields(&m)...)

	if err != nil {
		if IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &m, nil
}

func (s *Storage) ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMembersByTenantID")
	defer span.End()

	query := s.db.Statement(ctx).
		Select(membershipColumns...).
		From("memberships").
		Where(sq.Eq{
			"tenant_id": tenantID,
			"status":    types.MembershipActive,
		}).
		OrderBy("created_at")

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*types.Membership
	for rows.Next() {
		var m types.Membership
		if err := rows.Scan(membershipFields(&m)...); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}

// ReactivateMember flips a removed membership back to active with a fresh
// role. Rejoining via invitation reuses the row, (tenant_id, user_id) stays
// unique across the member's whole history.
func (s *Storage) ReactivateMember(ctx context.Context, tenantID, userID, role string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ReactivateMember")
	defer span.End()

	var m types.Membership
	err := s.db.Statement(ctx).
		Update("memberships").
		Set("status", types.MembershipActive).
		Set("role", role).
		Set("is_owner", false).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{
			"tenant_id": tenantID,
			"user_id":   userID,
			"status":    types.MembershipRemoved,
		}).
		Suffix("RETURNING " + joinColumns(membershipColumns)).
		QueryRowContext(ctx).
		Scan(membershipFields(&m)...)

	if err != nil {
		if IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to reactivate member: %w", err)
	}

	return &m, nil
}

func (s *Storage) HasActiveMembershipByEmail(ctx context.Context, tenantID, email string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.HasActiveMembershipByEmail")
	defer span.End()

	var count int
	err := s.db.Statement(ctx).
		Select("COUNT(*)").
		From("memberships").
		Where(sq.Eq{
			"tenant_id": tenantID,
			"email":     strings.ToLower(email),
			"status":    types.MembershipActive,
		}).
		QueryRowContext(ctx).
		Scan(&count)

	if err != nil {
		return false, fmt.Errorf("failed to check membership by email: %w", err)
	}

	return count > 0, nil
}

func (s *Storage) UpdateMemberRole(ctx context.Context, tenantID, userID, role string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateMemberRole")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("memberships").
		Set("role", role).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{
			"tenant_id": tenantID,
			"user_id":   userID,
			"status":    types.MembershipActive,
		}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
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

// RemoveMember soft-deletes a membership. The row is kept for audit history.
func (s *Storage) RemoveMember(ctx context.Context, tenantID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.RemoveMember")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("memberships").
		Set("status", types.MembershipRemoved).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{
			"tenant_id": tenantID,
			"user_id":   userID,
			"status":    types.MembershipActive,
		}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
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
