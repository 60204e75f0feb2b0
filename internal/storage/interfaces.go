// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/tenancy-service/internal/types"
)

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.UserTenant, error)
	UpdateTenant(ctx context.Context, id string, fields map[string]interface{}) error
	SetTenantLogo(ctx context.Context, id, logoURL string) error

	AddMember(ctx context.Context, m *types.Membership) (*types.Membership, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)
	ReactivateMember(ctx context.Context, tenantID, userID, role string) (*types.Membership, error)
	HasActiveMembershipByEmail(ctx context.Context, tenantID, email string) (bool, error)
	UpdateMemberRole(ctx context.Context, tenantID, userID, role string) error
	RemoveMember(ctx context.Context, tenantID, userID string) error

	CreateInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error)
	GetInvitationByID(ctx context.Context, tenantID, id string) (*types.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (*types.Invitation, error)
	GetPendingInvitationByEmail(ctx context.Context, tenantID, email string, now time.Time) (*types.Invitation, error)
	ListInvitationsByTenantID(ctx context.Context, tenantID string) ([]*types.Invitation, error)
	AcceptInvitation(ctx context.Context, token, userID string, now time.Time) (*types.Invitation, error)
	MarkInvitationRevoked(ctx context.Context, id string) (bool, error)
	RotateInvitationToken(ctx context.Context, id, token string, expiresAt time.Time) (bool, error)
}
