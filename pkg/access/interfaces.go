// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"

	"github.com/canonical/tenancy-service/internal/types"
)

type StorageInterface interface {
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
}

type GuardInterface interface {
	// Resolve establishes the caller's access context for a tenant. It fails
	// with a not found error for unknown tenants and an access denied error
	// for disabled tenants and missing or revoked memberships.
	Resolve(ctx context.Context, tenantID, userID string) (types.AccessContext, error)
	// RequireAdmin allows admins and the owner through. Panics if the access
	// context never went through Resolve.
	RequireAdmin(ctx context.Context, access types.AccessContext) error
	// RequireOwner allows only the owner through. Panics if the access
	// context never went through Resolve.
	RequireOwner(ctx context.Context, access types.AccessContext) error
}
