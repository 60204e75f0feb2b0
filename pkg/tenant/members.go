// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/tenancy-service/internal/storage"
	"github.com/canonical/tenancy-service/internal/types"
)

func (s *Service) ListMembers(ctx context.Context, access types.AccessContext) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListMembers")
	defer span.End()

	return s.storage.ListMembersByTenantID(ctx, access.TenantID())
}

// ChangeRole updates a member's role subject to the owner invariant: the
// owner's membership can never be altered, and demoting an admin is reserved
// for the owner.
func (s *Service) ChangeRole(ctx context.Context, access types.AccessContext, userID, role string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ChangeRole")
	defer span.End()

	if role != types.RoleUser && role != types.RoleAdmin {
		return nil, types.NewValidationError("role must be one of: user, admin")
	}

	target, err := s.targetMembership(ctx, access.TenantID(), userID)
	if err != nil {
		return nil, err
	}

	if target.IsOwner {
		s.logger.Security().AuthzFailure(access.UserID(), "owner_role_change")
		return nil, types.NewAccessDeniedError("the owner's role cannot be changed")
	}

	if target.Role == types.RoleAdmin && role == types.RoleUser && !access.IsOwner() {
		s.logger.Security().AuthzFailure(access.UserID(), "admin_demotion")
		return nil, types.NewAccessDeniedError("only the owner can demote an administrator")
	}

	if err := s.storage.UpdateMemberRole(ctx, access.TenantID(), userID, role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.NewNotFoundError("member")
		}
		return nil, fmt.Errorf("failed to change member role: %w", err)
	}

	target.Role = role
	return target, nil
}

// RemoveMember soft-deletes a membership subject to the owner invariant: the
// owner can never be removed, and removing an admin is reserved for the owner
// unless the admin is removing themselves.
func (s *Service) RemoveMember(ctx context.Context, access types.AccessContext, userID string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.RemoveMember")
	defer span.End()

	target, err := s.targetMembership(ctx, access.TenantID(), userID)
	if err != nil {
		return err
	}

	if target.IsOwner {
		s.logger.Security().AuthzFailure(access.UserID(), "owner_removal")
		return types.NewAccessDeniedError("the owner cannot be removed")
	}

	selfRemoval := access.UserID() == userID
	if target.Role == types.RoleAdmin && !access.IsOwner() && !selfRemoval {
		s.logger.Security().AuthzFailure(access.UserID(), "admin_removal")
		return types.NewAccessDeniedError("only the owner can remove an administrator")
	}

	if err := s.storage.RemoveMember(ctx, access.TenantID(), userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.NewNotFoundError("member")
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (s *Service) targetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error) {
	target, err := s.storage.GetMembership(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.NewNotFoundError("member")
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if !target.Active() {
		return nil, types.NewNotFoundError("member")
	}
	return target, nil
}
