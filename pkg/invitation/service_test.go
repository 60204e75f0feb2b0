// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/storage"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
	"github.com/canonical/tenancy-service/pkg/authentication"
)

//go:generate mockgen -build_flags=--mod=mod -package invitation -destination ./mock_interfaces.go -source=./interfaces.go

const testLifetime = 7 * 24 * time.Hour

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

func newTestService(s StorageInterface, tx TxManagerInterface) *Service {
	return NewService(s, tx, testLifetime, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())
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

func TestService_Create(t *testing.T) {
	access := types.NewAccessContext("tenant-1", "admin-1", types.RoleAdmin, false)

	t.Run("Invalid role", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := newTestService(NewMockStorageInterface(ctrl), passthroughTx(ctrl))

		if _, err := service.Create(context.Background(), access, "bob@x.com", "root"); !types.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("Email already an active member", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().HasActiveMembershipByEmail(gomock.Any(), "tenant-1", "bob@x.com").Return(true, nil)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		if _, err := service.Create(context.Background(), access, "bob@x.com", types.RoleUser); !types.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("Pending invitation exists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().HasActiveMembershipByEmail(gomock.Any(), "tenant-1", "bob@x.com").Return(false, nil)
		mockStorage.EXPECT().GetPendingInvitationByEmail(gomock.Any(), "tenant-1", "bob@x.com", gomock.Any()).
			Return(&types.Invitation{ID: "inv-1"}, nil)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		if _, err := service.Create(context.Background(), access, "bob@x.com", types.RoleUser); !types.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("Expired pending invitation does not block", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().HasActiveMembershipByEmail(gomock.Any(), "tenant-1", "bob@x.com").Return(false, nil)
		// The pending lookup already filters out expired rows.
		mockStorage.EXPECT().GetPendingInvitationByEmail(gomock.Any(), "tenant-1", "bob@x.com", gomock.Any()).
			Return(nil, storage.ErrNotFound)

		var created *types.Invitation
		mockStorage.EXPECT().CreateInvitation(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, inv *types.Invitation) (*types.Invitation, error) {
				created = inv
				return inv, nil
			},
		)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		before := time.Now()
		if _, err := service.Create(context.Background(), access, "bob@x.com", types.RoleAdmin); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if created == nil {
			t.Fatal("expected an invitation to be created")
		}
		if !hexToken.MatchString(created.Token) {
			t.Errorf("expected a 256-bit hex token, got %q", created.Token)
		}
		if created.CreatedBy != "admin-1" || created.Role != types.RoleAdmin {
			t.Errorf("unexpected invitation fields: %+v", created)
		}

		wantExpiry := before.Add(testLifetime)
		if created.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || created.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
			t.Errorf("expected expiry near %v, got %v", wantExpiry, created.ExpiresAt)
		}
	})
}

func TestService_Accept(t *testing.T) {
	principal := &authentication.Principal{ID: "user-5", Email: "bob@x.com"}
	pending := &types.Invitation{
		ID:       "inv-1",
		TenantID: "tenant-1",
		Email:    "bob@x.com",
		Role:     types.RoleAdmin,
	}

	t.Run("Requires principal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := newTestService(NewMockStorageInterface(ctrl), NewMockTxManagerInterface(ctrl))

		if _, err := service.Accept(context.Background(), nil, "tok"); err != types.ErrAuthenticationRequired {
			t.Fatalf("expected authentication error, got %v", err)
		}
	})

	t.Run("Stale token conflicts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().AcceptInvitation(gomock.Any(), "tok", "user-5", gomock.Any()).
			Return(nil, storage.ErrNotFound)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		if _, err := service.Accept(context.Background(), principal, "tok"); !types.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("Creates membership", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().AcceptInvitation(gomock.Any(), "tok", "user-5", gomock.Any()).Return(pending, nil)
		mockStorage.EXPECT().GetMembership(gomock.Any(), "tenant-1", "user-5").Return(nil, storage.ErrNotFound)

		var added *types.Membership
		mockStorage.EXPECT().AddMember(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, m *types.Membership) (*types.Membership, error) {
				added = m
				return m, nil
			},
		)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		membership, err := service.Accept(context.Background(), principal, "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if membership == nil || added == nil {
			t.Fatal("expected a membership to be created")
		}
		if added.Role != types.RoleAdmin || added.IsOwner {
			t.Errorf("membership must take the invited role and never ownership: %+v", added)
		}
		if added.Email != "bob@x.com" {
			t.Errorf("membership email must come from the invitation, got %q", added.Email)
		}
	})

	t.Run("Already a member still transitions the invitation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().AcceptInvitation(gomock.Any(), "tok", "user-5", gomock.Any()).Return(pending, nil)
		mockStorage.EXPECT().GetMembership(gomock.Any(), "tenant-1", "user-5").
			Return(&types.Membership{TenantID: "tenant-1", UserID: "user-5", Status: types.MembershipActive}, nil)

		// The closure must return nil so the accepted transition commits.
		tx := NewMockTxManagerInterface(ctrl)
		tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, fn func(context.Context) error) error {
				if err := fn(ctx); err != nil {
					t.Errorf("accept closure must commit in the already-member branch, got %v", err)
					return err
				}
				return nil
			},
		)

		service := newTestService(mockStorage, tx)

		if _, err := service.Accept(context.Background(), principal, "tok"); !types.IsConflict(err) {
			t.Fatalf("expected already-a-member conflict, got %v", err)
		}
	})

	t.Run("Removed member rejoins", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().AcceptInvitation(gomock.Any(), "tok", "user-5", gomock.Any()).Return(pending, nil)
		mockStorage.EXPECT().GetMembership(gomock.Any(), "tenant-1", "user-5").
			Return(&types.Membership{TenantID: "tenant-1", UserID: "user-5", Status: types.MembershipRemoved}, nil)
		mockStorage.EXPECT().ReactivateMember(gomock.Any(), "tenant-1", "user-5", types.RoleAdmin).
			Return(&types.Membership{TenantID: "tenant-1", UserID: "user-5", Role: types.RoleAdmin, Status: types.MembershipActive}, nil)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		membership, err := service.Accept(context.Background(), principal, "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !membership.Active() {
			t.Errorf("expected a reactivated membership, got %+v", membership)
		}
	})

	t.Run("Concurrent founding race backstopped by constraint", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().AcceptInvitation(gomock.Any(), "tok", "user-5", gomock.Any()).Return(pending, nil)
		mockStorage.EXPECT().GetMembership(gomock.Any(), "tenant-1", "user-5").Return(nil, storage.ErrNotFound)
		mockStorage.EXPECT().AddMember(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateKey)

		// Losing the insert race is the already-member case, the accepted
		// transition must still commit.
		tx := NewMockTxManagerInterface(ctrl)
		tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, fn func(context.Context) error) error {
				if err := fn(ctx); err != nil {
					t.Errorf("accept closure must commit when the membership insert loses a race, got %v", err)
					return err
				}
				return nil
			},
		)

		service := newTestService(mockStorage, tx)

		if _, err := service.Accept(context.Background(), principal, "tok"); !types.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})
}

func TestService_RevokeAndResend(t *testing.T) {
	access := types.NewAccessContext("tenant-1", "admin-1", types.RoleAdmin, false)

	t.Run("Revoke unknown invitation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().GetInvitationByID(gomock.Any(), "tenant-1", "inv-1").Return(nil, storage.ErrNotFound)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		if err := service.Revoke(context.Background(), access, "inv-1"); !types.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("Revoke is not idempotent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().GetInvitationByID(gomock.Any(), "tenant-1", "inv-1").
			Return(&types.Invitation{ID: "inv-1", Status: types.InvitationRevoked}, nil)
		mockStorage.EXPECT().MarkInvitationRevoked(gomock.Any(), "inv-1").Return(false, nil)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		if err := service.Revoke(context.Background(), access, "inv-1"); !types.IsConflict(err) {
			t.Fatalf("expected conflict on double revoke, got %v", err)
		}
	})

	t.Run("Revoke pending invitation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().GetInvitationByID(gomock.Any(), "tenant-1", "inv-1").
			Return(&types.Invitation{ID: "inv-1", Status: types.InvitationPending}, nil)
		mockStorage.EXPECT().MarkInvitationRevoked(gomock.Any(), "inv-1").Return(true, nil)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		if err := service.Revoke(context.Background(), access, "inv-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Resend rotates the token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().GetInvitationByID(gomock.Any(), "tenant-1", "inv-1").
			Return(&types.Invitation{ID: "inv-1", Status: types.InvitationPending, Token: "old"}, nil)

		var rotatedToken string
		mockStorage.EXPECT().RotateInvitationToken(gomock.Any(), "inv-1", gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, token string, _ time.Time) (bool, error) {
				rotatedToken = token
				return true, nil
			},
		)
		mockStorage.EXPECT().GetInvitationByID(gomock.Any(), "tenant-1", "inv-1").
			Return(&types.Invitation{ID: "inv-1", Status: types.InvitationPending}, nil)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		if _, err := service.Resend(context.Background(), access, "inv-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !hexToken.MatchString(rotatedToken) {
			t.Errorf("expected a fresh 256-bit hex token, got %q", rotatedToken)
		}
	})

	t.Run("Resend non-pending conflicts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStorage := NewMockStorageInterface(ctrl)
		mockStorage.EXPECT().GetInvitationByID(gomock.Any(), "tenant-1", "inv-1").
			Return(&types.Invitation{ID: "inv-1", Status: types.InvitationAccepted}, nil)
		mockStorage.EXPECT().RotateInvitationToken(gomock.Any(), "inv-1", gomock.Any(), gomock.Any()).Return(false, nil)

		service := newTestService(mockStorage, passthroughTx(ctrl))

		if _, err := service.Resend(context.Background(), access, "inv-1"); !types.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})
}

func TestService_GetByToken(t *testing.T) {
	tests := []struct {
		name       string
		invitation *types.Invitation
		lookupErr  error
		expectOK   bool
	}{
		{
			name:      "Unknown token",
			lookupErr: storage.ErrNotFound,
		},
		{
			name: "Pending and unexpired",
			invitation: &types.Invitation{
				TenantID:  "tenant-1",
				Email:     "bob@x.com",
				Role:      types.RoleUser,
				Status:    types.InvitationPending,
				ExpiresAt: time.Now().Add(time.Hour),
			},
			expectOK: true,
		},
		{
			name: "Pending but expired",
			invitation: &types.Invitation{
				TenantID:  "tenant-1",
				Status:    types.InvitationPending,
				ExpiresAt: time.Now().Add(-time.Hour),
			},
		},
		{
			name: "Revoked",
			invitation: &types.Invitation{
				TenantID:  "tenant-1",
				Status:    types.InvitationRevoked,
				ExpiresAt: time.Now().Add(time.Hour),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockStorage.EXPECT().GetInvitationByToken(gomock.Any(), "tok").Return(tt.invitation, tt.lookupErr)
			if tt.expectOK {
				mockStorage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").
					Return(&types.Tenant{ID: "tenant-1", Name: "Acme"}, nil)
			}

			service := newTestService(mockStorage, passthroughTx(ctrl))

			preview, err := service.GetByToken(context.Background(), "tok")

			if !tt.expectOK {
				if !types.IsNotFound(err) {
					t.Fatalf("expected not found, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if preview.Organization != "Acme" || preview.Email != "bob@x.com" {
				t.Errorf("unexpected preview: %+v", preview)
			}
		})
	}
}
