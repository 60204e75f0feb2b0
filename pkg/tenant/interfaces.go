// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"io"

	"github.com/canonical/tenancy-service/internal/types"
	"github.com/canonical/tenancy-service/pkg/authentication"
)

type ServiceInterface interface {
	ListTenantsForUser(ctx context.Context, userID string) ([]*types.UserTenant, error)
	GetTenant(ctx context.Context, access types.AccessContext) (*types.Tenant, error)
	// CreateTenant inserts the tenant and its founder membership atomically.
	// The founder becomes an admin and the owner.
	CreateTenant(ctx context.Context, principal *authentication.Principal, tenant *types.Tenant) (*types.Tenant, error)
	// UpdateTenant applies the whitelisted subset of the given fields. Unknown
	// fields are ignored, not rejected.
	UpdateTenant(ctx context.Context, access types.AccessContext, fields map[string]interface{}) (*types.Tenant, error)
	UploadLogo(ctx context.Context, access types.AccessContext, filename, contentType string, size int64, content io.Reader) (*types.Tenant, error)

	ListMembers(ctx context.Context, access types.AccessContext) ([]*types.Membership, error)
	ChangeRole(ctx context.Context, access types.AccessContext, userID, role string) (*types.Membership, error)
	RemoveMember(ctx context.Context, access types.AccessContext, userID string) error
}

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.UserTenant, error)
	UpdateTenant(ctx context.Context, id string, fields map[string]interface{}) error
	SetTenantLogo(ctx context.Context, id, logoURL string) error

	AddMember(ctx context.Context, m *types.Membership) (*types.Membership, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)
	UpdateMemberRole(ctx context.Context, tenantID, userID, role string) error
	RemoveMember(ctx context.Context, tenantID, userID string) error
}

// TxManagerInterface is the slice of the database client needed to run
// multi-statement operations atomically.
type TxManagerInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

type GuardInterface interface {
	Resolve(ctx context.Context, tenantID, userID string) (types.AccessContext, error)
	RequireAdmin(ctx context.Context, access types.AccessContext) error
	RequireOwner(ctx context.Context, access types.AccessContext) error
}
