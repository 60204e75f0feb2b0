// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"regexp"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_interfaces.go -source=./interfaces.go

func newTestService(s StorageInterface, tx TxManagerInterface) *Service {
	return NewService(s, tx, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())
}

func passthroughTx(ctrl *gomock.Controller) *MockTxManagerInterface {
	tx := NewMockTxManagerInterface(ctrl)
	tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
	return tx
}

func TestService_HandleRegistration(t *testing.T) {
	t.Run("Requires identity and email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := newTestService(NewMockStorageInterface(ctrl), passthroughTx(ctrl))

		if _, err := service.HandleRegistration(context.Background(), "", "bob@x.com"); !types.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, err := service.HandleRegistration(context.Background(), "user-1", ""); !types.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("Provisions a personal organization with the signup as owner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)

		var createdTenant *types.Tenant
		mockStorage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, tenant *types.Tenant) (*types.Tenant, error) {
				tenant.ID = "tenant-1"
				createdTenant = tenant
				return tenant, nil
			},
		)

		var founder *types.Membership
		mockStorage.EXPECT().AddMember(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, m *types.Membership) (*types.Membership, error) {
				founder = m
				return m, nil
			},
		)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		tenant, err := service.HandleRegistration(context.Background(), "user-1", "Bob.Smith@X.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if tenant.Name != "bob.smith@x.com's Org" {
			t.Errorf("unexpected name: %q", tenant.Name)
		}
		if !regexp.MustCompile(`^bob-smith-[0-9a-f]{8}$`).MatchString(createdTenant.Slug) {
			t.Errorf("unexpected slug: %q", createdTenant.Slug)
		}
		if founder.UserID != "user-1" || !founder.IsOwner || founder.Role != types.RoleAdmin {
			t.Errorf("founder must be the owner: %+v", founder)
		}
		if founder.Email != "bob.smith@x.com" {
			t.Errorf("founder email must be lowercased: %q", founder.Email)
		}
	})
}

func TestPersonalSlug(t *testing.T) {
	tests := []struct {
		email  string
		prefix string
	}{
		{"bob@x.com", "bob-"},
		{"Bob.Smith+test@x.com", "bob-smith-test-"},
		{"@x.com", "org-"},
	}

	for _, tt := range tests {
		slug := personalSlug(tt.email)
		if !regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`).MatchString(slug) {
			t.Errorf("personalSlug(%q) = %q, not a valid slug", tt.email, slug)
		}
		if len(slug) < len(tt.prefix) || slug[:len(tt.prefix)] != tt.prefix {
			t.Errorf("personalSlug(%q) = %q, expected prefix %q", tt.email, slug, tt.prefix)
		}
	}
}
