// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package investment

import (
	"context"

	"github.com/canonical/tenancy-service/internal/types"
)

type ServiceInterface interface {
	ListProperties(ctx context.Context, access types.AccessContext) ([]*types.Property, error)
	CreateProperty(ctx context.Context, access types.AccessContext, property *types.Property) (*types.Property, error)
	GetProperty(ctx context.Context, access types.AccessContext, id string) (*types.Property, error)
	ListInvestments(ctx context.Context, access types.AccessContext) ([]*types.Investment, error)
	// CreateInvestment funds a property. The funding increment, the investment
	// row and the transaction record are written in one transaction. Funding
	// past the goal conflicts, the increment is conditional on headroom.
	CreateInvestment(ctx context.Context, access types.AccessContext, propertyID string, amount int64) (*types.Investment, error)
}

type TxManagerInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

type GuardInterface interface {
	Resolve(ctx context.Context, tenantID, userID string) (types.AccessContext, error)
	RequireAdmin(ctx context.Context, access types.AccessContext) error
	RequireOwner(ctx context.Context, access types.AccessContext) error
}
