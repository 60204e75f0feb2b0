// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/storage"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
	"github.com/canonical/tenancy-service/pkg/authentication"
)

// tokenBytes gives 256 bits of entropy per invitation token.
const tokenBytes = 32

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage  StorageInterface
	tx       TxManagerInterface
	lifetime time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	tx TxManagerInterface,
	lifetime time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		tx:       tx,
		lifetime: lifetime,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, access types.AccessContext) ([]*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.List")
	defer span.End()

	return s.storage.ListInvitationsByTenantID(ctx, access.TenantID())
}

func (s *Service) Create(ctx context.Context, access types.AccessContext, email, role string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.Create")
	defer span.End()

	if role != types.RoleUser && role != types.RoleAdmin {
		return nil, types.NewValidationError("role must be one of: user, admin")
	}

	now := time.Now()

	isMember, err := s.storage.HasActiveMembershipByEmail(ctx, access.TenantID(), email)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return nil, types.NewConflictError("this email already belongs to an active member")
	}

	_, err = s.storage.GetPendingInvitationByEmail(ctx, access.TenantID(), email, now)
	if err == nil {
		return nil, types.NewConflictError("a pending invitation for this email already exists")
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	created, err := s.storage.CreateInvitation(ctx, &types.Invitation{
		TenantID:  access.TenantID(),
		Email:     email,
		Role:      role,
		Token:     token,
		ExpiresAt: now.Add(s.lifetime),
		CreatedBy: access.UserID(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, types.NewConflictError("a pending invitation for this email already exists")
		}
		s.logger.Errorf("failed to create invitation: %v", err)
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return created, nil
}

// Accept runs the redemption transaction. The conditional update on the
// invitation row serializes concurrent accepts of the same token, the
// membership uniqueness constraint backstops races against founding flows.
func (s *Service) Accept(ctx context.Context, principal *authentication.Principal, token string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.Accept")
	defer span.End()

	if principal == nil || principal.ID == "" {
		return nil, types.ErrAuthenticationRequired
	}

	now := time.Now()

	var (
		membership    *types.Membership
		alreadyMember bool
	)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.storage.AcceptInvitation(ctx, token, principal.ID, now)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return types.NewConflictError("invitation already processed or expired")
			}
			return fmt.Errorf("failed to accept invitation: %w", err)
		}

		existing, err := s.storage.GetMembership(ctx, inv.TenantID, principal.ID)
		switch {
		case err == nil && existing.Active():
			// Keep the accepted transition, report the conflict after commit.
			alreadyMember = true
			return nil
		case err == nil:
			membership, err = s.storage.ReactivateMember(ctx, inv.TenantID, principal.ID, inv.Role)
			return err
		case errors.Is(err, storage.ErrNotFound):
			membership, err = s.storage.AddMember(ctx, &types.Membership{
				TenantID: inv.TenantID,
				UserID:   principal.ID,
				Email:    inv.Email,
				Role:     inv.Role,
				IsOwner:  false,
			})
			if errors.Is(err, storage.ErrDuplicateKey) {
				// A concurrent flow inserted the membership first. Same
				// outcome as finding it above, the transition commits.
				alreadyMember = true
				return nil
			}
			return err
		default:
			return fmt.Errorf("failed to check membership: %w", err)
		}
	})

	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, types.NewConflictError("already a member of this organization")
	}

	return membership, nil
}

func (s *Service) Revoke(ctx context.Context, access types.AccessContext, id string) error {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.Revoke")
	defer span.End()

	if _, err := s.getInvitation(ctx, access.TenantID(), id); err != nil {
		return err
	}

	revoked, err := s.storage.MarkInvitationRevoked(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to revoke invitation: %w", err)
	}
	if !revoked {
		return types.NewConflictError("invitation is not pending")
	}

	return nil
}

func (s *Service) Resend(ctx context.Context, access types.AccessContext, id string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.Resend")
	defer span.End()

	if _, err := s.getInvitation(ctx, access.TenantID(), id); err != nil {
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	rotated, err := s.storage.RotateInvitationToken(ctx, id, token, time.Now().Add(s.lifetime))
	if err != nil {
		return nil, fmt.Errorf("failed to rotate invitation token: %w", err)
	}
	if !rotated {
		return nil, types.NewConflictError("invitation is not pending")
	}

	return s.getInvitation(ctx, access.TenantID(), id)
}

func (s *Service) GetByToken(ctx context.Context, token string) (*Preview, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.GetByToken")
	defer span.End()

	inv, err := s.storage.GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.NewNotFoundError("invitation")
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	if inv.Status != types.InvitationPending || inv.Expired(time.Now()) {
		return nil, types.NewNotFoundError("invitation")
	}

	tenant, err := s.storage.GetTenantByID(ctx, inv.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant for invitation: %w", err)
	}

	return &Preview{
		Email:        inv.Email,
		Role:         inv.Role,
		Organization: tenant.Name,
		ExpiresAt:    inv.ExpiresAt,
	}, nil
}

func (s *Service) getInvitation(ctx context.Context, tenantID, id string) (*types.Invitation, error) {
	inv, err := s.storage.GetInvitationByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.NewNotFoundError("invitation")
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
