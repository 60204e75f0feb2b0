// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"context"
	"time"

	"github.com/canonical/tenancy-service/internal/types"
	"github.com/canonical/tenancy-service/pkg/authentication"
)

type ServiceInterface interface {
	List(ctx context.Context, access types.AccessContext) ([]*types.Invitation, error)
	// Create issues a pending invitation. It conflicts when the address
	// already belongs to an active member or already has a pending,
	// non-expired invitation.
	Create(ctx context.Context, access types.AccessContext, email, role string) (*types.Invitation, error)
	// Accept redeems a pending, non-expired token and creates the membership
	// atomically. When the caller is already an active member the invitation
	// still transitions to accepted, but the call reports a conflict.
	Accept(ctx context.Context, principal *authentication.Principal, token string) (*types.Membership, error)
	Revoke(ctx context.Context, access types.AccessContext, id string) error
	// Resend rotates the token and resets the expiry, invalidating the
	// previously sent link.
	Resend(ctx context.Context, access types.AccessContext, id string) (*types.Invitation, error)
	// GetByToken is the unauthenticated lookup backing the invitation landing
	// page. Anything but a pending, unexpired invitation reads as not found.
	GetByToken(ctx context.Context, token string) (*Preview, error)
}

type StorageInterface interface {
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)

	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
	AddMember(ctx context.Context, m *types.Membership) (*types.Membership, error)
	ReactivateMember(ctx context.Context, tenantID, userID, role string) (*types.Membership, error)
	HasActiveMembershipByEmail(ctx context.Context, tenantID, email string) (bool, error)

	CreateInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error)
	GetInvitationByID(ctx context.Context, tenantID, id string) (*types.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (*types.Invitation, error)
	GetPendingInvitationByEmail(ctx context.Context, tenantID, email string, now time.Time) (*types.Invitation, error)
	ListInvitationsByTenantID(ctx context.Context, tenantID string) ([]*types.Invitation, error)
	AcceptInvitation(ctx context.Context, token, userID string, now time.Time) (*types.Invitation, error)
	MarkInvitationRevoked(ctx context.Context, id string) (bool, error)
	RotateInvitationToken(ctx context.Context, id, token string, expiresAt time.Time) (bool, error)
}

type TxManagerInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

type GuardInterface interface {
	Resolve(ctx context.Context, tenantID, userID string) (types.AccessContext, error)
	RequireAdmin(ctx context.Context, access types.AccessContext) error
	RequireOwner(ctx context.Context, access types.AccessContext) error
}
