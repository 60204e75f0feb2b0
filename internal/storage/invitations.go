// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenancy-service/internal/types"
)

var invitationColumns = []string{
	"id", "tenant_id", "email", "role", "token", "status", "expires_at",
	"created_by", "accepted_by", "accepted_at", "created_at",
}

func invitationFields(i *types.Invitation) []interface{} {
	return []interface{}{
		&i.ID, &i.TenantID, &i.Email, &i.Role, &i.Token, &i.Status,
		&i.ExpiresAt, &i.CreatedBy, &i.AcceptedBy, &i.AcceptedAt, &i.CreatedAt,
	}
}

func (s *Storage) CreateInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateInvitation")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation ID: %w", err)
	}

	var created types.Invitation
	err = s.db.Statement(ctx).
		Insert("invitations").
		Columns("id", "tenant_id", "email", "role", "token", "status", "expires_at", "created_by").
		Values(id.String(), inv.TenantID, strings.ToLower(inv.Email), inv.Role, inv.Token, types.InvitationPending, inv.ExpiresAt, inv.CreatedBy).
		Suffix("RETURNING " + joinColumns(invitationColumns)).
		QueryRowContext(ctx).
		Scan(invitationFields(&created)...)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		if IsForeignKeyViolation(err) {
			return nil, ErrForeignKeyViolation
		}
		return nil, fmt.Errorf("failed to insert invitation: %w", err)
	}

	return &created, nil
}

func (s *Storage) GetInvitationByID(ctx context.Context, tenantID, id string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInvitationByID")
	defer span.End()

	var inv types.Invitation
	err := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("invitations").
		Where(sq.Eq{
			"id":        id,
			"tenant_id": tenantID,
		}).
		QueryRowContext(ctx).
		Scan(invitationFields(&inv)...)

	if err != nil {
		if IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return &inv, nil
}

func (s *Storage) GetInvitationByToken(ctx context.Context, token string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInvitationByToken")
	defer span.End()

	var inv types.Invitation
	err := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("invitations").
		Where(sq.Eq{"token": token}).
		QueryRowContext(ctx).
		Scan(invitationFields(&inv)...)

	if err != nil {
		if IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation by token: %w", err)
	}

	return &inv, nil
}

// GetPendingInvitationByEmail returns the pending, non-expired invitation for
// (tenant, email) if one exists. Expiry is evaluated here, not stored.
func (s *Storage) GetPendingInvitationByEmail(ctx context.Context, tenantID, email string, now time.Time) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetPendingInvitationByEmail")
	defer span.End()

	var inv types.Invitation
	err := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("invitations").
		Where(sq.Eq{
			"tenant_id": tenantID,
			"email":     strings.ToLower(email),
			"status":    types.InvitationPending,
		}).
		Where(sq.Gt{"expires_at": now}).
		OrderBy("created_at DESC").
		Limit(1).
		QueryRowContext(ctx).
		Scan(invitationFields(&inv)...)

	if err != nil {
		if IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending invitation: %w", err)
	}

	return &inv, nil
}

func (s *Storage) ListInvitationsByTenantID(ctx context.Context, tenantID string) ([]*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListInvitationsByTenantID")
	defer span.End()

	query := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("invitations").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC")

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*types.Invitation
	for rows.Next() {
		var inv types.Invitation
		if err := rows.Scan(invitationFields(&inv)...); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return invitations, nil
}

// AcceptInvitation flips a pending, non-expired invitation to accepted with a
// conditional update. Concurrent accepts for the same token are serialized
// here, only one caller gets the row back, everyone else gets ErrNotFound.
func (s *Storage) AcceptInvitation(ctx context.Context, token, userID string, now time.Time) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AcceptInvitation")
	defer span.End()

	var inv types.Invitation
	err := s.db.Statement(ctx).
		Update("invitations").
		Set("status", types.InvitationAccepted).
		Set("accepted_by", userID).
		Set("accepted_at", now).
		Where(sq.Eq{
			"token":  token,
			"status": types.InvitationPending,
		}).
		Where(sq.Gt{"expires_at": now}).
		Suffix("RETURNING " + joinColumns(invitationColumns)).
		QueryRowContext(ctx).
		Scan(invitationFields(&inv)...)

	if err != nil {
		if IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	return &inv, nil
}

// MarkInvitationRevoked transitions pending → revoked. Returns false when the
// invitation was not pending, revocation is not idempotent.
func (s *Storage) MarkInvitationRevoked(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.MarkInvitationRevoked")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("invitations").
		Set("status", types.InvitationRevoked).
		Where(sq.Eq{
			"id":     id,
			"status": types.InvitationPending,
		}).
		ExecContext(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to revoke invitation: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows > 0, nil
}

// RotateInvitationToken replaces the token and resets expiry on a pending
// invitation, invalidating any previously sent link.
func (s *Storage) RotateInvitationToken(ctx context.Context, id, token string, expiresAt time.Time) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.RotateInvitationToken")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("invitations").
		Set("token", token).
		Set("expires_at", expiresAt).
		Where(sq.Eq{
			"id":     id,
			"status": types.InvitationPending,
		}).
		ExecContext(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to rotate invitation token: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows > 0, nil
}
