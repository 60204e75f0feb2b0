// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/storage"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
)

var _ GuardInterface = (*Guard)(nil)

// Guard resolves tenant membership into an access context and enforces role
// gates on it. Every tenant-bound request goes through Resolve exactly once.
type Guard struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewGuard(s StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Guard {
	g := new(Guard)

	g.storage = s

	g.tracer = tracer
	g.monitor = monitor
	g.logger = logger

	return g
}

func (g *Guard) Resolve(ctx context.Context, tenantID, userID string) (types.AccessContext, error) {
	ctx, span := g.tracer.Start(ctx, "access.Guard.Resolve")
	defer span.End()

	tenant, err := g.storage.GetTenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.AccessContext{}, types.NewNotFoundError("organization")
		}
		return types.AccessContext{}, fmt.Errorf("failed to resolve tenant: %w", err)
	}

	if !tenant.Enabled {
		g.logger.Security().AuthzFailure(userID, "tenant_access")
		return types.AccessContext{}, types.NewAccessDeniedError("no access to this organization")
	}

	membership, err := g.storage.GetMembership(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.logger.Security().AuthzFailure(userID, "tenant_access")
			return types.AccessContext{}, types.NewAccessDeniedError("no access to this organization")
		}
		return types.AccessContext{}, fmt.Errorf("failed to resolve membership: %w", err)
	}

	if !membership.Active() {
		g.logger.Security().AuthzFailure(userID, "tenant_access")
		return types.AccessContext{}, types.NewAccessDeniedError("access revoked")
	}

	return types.NewAccessContext(tenantID, userID, membership.Role, membership.IsOwner), nil
}

func (g *Guard) RequireAdmin(ctx context.Context, access types.AccessContext) error {
	_, span := g.tracer.Start(ctx, "access.Guard.RequireAdmin")
	defer span.End()

	g.mustBeResolved(access)

	if access.IsOwner() || access.Role() == types.RoleAdmin {
		return nil
	}

	g.logger.Security().AuthzFailure(access.UserID(), "tenant_admin")
	return types.NewAccessDeniedError("administrator role required")
}

func (g *Guard) RequireOwner(ctx context.Context, access types.AccessContext) error {
	_, span := g.tracer.Start(ctx, "access.Guard.RequireOwner")
	defer span.End()

	g.mustBeResolved(access)

	if access.IsOwner() {
		return nil
	}

	g.logger.Security().AuthzFailure(access.UserID(), "tenant_owner")
	return types.NewAccessDeniedError("owner role required")
}

// mustBeResolved panics on an access context that skipped Resolve. Reaching a
// role gate with the zero value is a programming error, not a request error,
// and must never fail open.
func (g *Guard) mustBeResolved(access types.AccessContext) {
	if !access.Resolved() {
		panic("access: role gate invoked with unresolved access context")
	}
}
