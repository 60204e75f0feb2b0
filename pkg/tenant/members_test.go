// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenancy-service/internal/storage"
	"github.com/canonical/tenancy-service/internal/types"
)

func activeMember(userID, role string, isOwner bool) *types.Membership {
	return &types.Membership{
		TenantID: "tenant-1",
		UserID:   userID,
		Role:     role,
		IsOwner:  isOwner,
		Status:   types.MembershipActive,
	}
}

func TestService_ChangeRole(t *testing.T) {
	ownerCtx := types.NewAccessContext("tenant-1", "owner-1", types.RoleAdmin, true)
	adminCtx := types.NewAccessContext("tenant-1", "admin-1", types.RoleAdmin, false)

	tests := []struct {
		name         string
		actor        types.AccessContext
		targetUserID string
		newRole      string
		setupMocks   func(*MockStorageInterface)
		expectDenied bool
		expectValid  bool
	}{
		{
			name:         "Invalid role rejected",
			actor:        adminCtx,
			targetUserID: "user-2",
			newRole:      "superuser",
			setupMocks:   func(m *MockStorageInterface) {},
			expectValid:  true,
		},
		{
			name:         "Owner cannot be demoted by an admin",
			actor:        adminCtx,
			targetUserID: "owner-1",
			newRole:      types.RoleUser,
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "owner-1").
					Return(activeMember("owner-1", types.RoleAdmin, true), nil)
			},
			expectDenied: true,
		},
		{
			name:         "Owner cannot demote themselves",
			actor:        ownerCtx,
			targetUserID: "owner-1",
			newRole:      types.RoleUser,
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "owner-1").
					Return(activeMember("owner-1", types.RoleAdmin, true), nil)
			},
			expectDenied: true,
		},
		{
			name:         "Admin cannot demote another admin",
			actor:        adminCtx,
			targetUserID: "admin-2",
			newRole:      types.RoleUser,
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "admin-2").
					Return(activeMember("admin-2", types.RoleAdmin, false), nil)
			},
			expectDenied: true,
		},
		{
			name:         "Owner demotes an admin",
			actor:        ownerCtx,
			targetUserID: "admin-2",
			newRole:      types.RoleUser,
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "admin-2").
					Return(activeMember("admin-2", types.RoleAdmin, false), nil)
				m.EXPECT().UpdateMemberRole(gomock.Any(), "tenant-1", "admin-2", types.RoleUser).Return(nil)
			},
		},
		{
			name:         "Admin promotes a user",
			actor:        adminCtx,
			targetUserID: "user-2",
			newRole:      types.RoleAdmin,
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "user-2").
					Return(activeMember("user-2", types.RoleUser, false), nil)
				m.EXPECT().UpdateMemberRole(gomock.Any(), "tenant-1", "user-2", types.RoleAdmin).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			tt.setupMocks(mockStorage)

			service := newTestService(mockStorage, passthroughTx(ctrl), t.TempDir())

			member, err := service.ChangeRole(context.Background(), tt.actor, tt.targetUserID, tt.newRole)

			if tt.expectValid {
				if !types.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if tt.expectDenied {
				if !types.IsAccessDenied(err) {
					t.Fatalf("expected access denied, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if member.Role != tt.newRole {
				t.Errorf("expected updated role %q, got %q", tt.newRole, member.Role)
			}
		})
	}
}

func TestService_RemoveMember(t *testing.T) {
	ownerCtx := types.NewAccessContext("tenant-1", "owner-1", types.RoleAdmin, true)
	adminCtx := types.NewAccessContext("tenant-1", "admin-1", types.RoleAdmin, false)

	tests := []struct {
		name           string
		actor          types.AccessContext
		targetUserID   string
		setupMocks     func(*MockStorageInterface)
		expectDenied   bool
		expectNotFound bool
	}{
		{
			name:         "Owner cannot be removed",
			actor:        ownerCtx,
			targetUserID: "owner-1",
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "owner-1").
					Return(activeMember("owner-1", types.RoleAdmin, true), nil)
			},
			expectDenied: true,
		},
		{
			name:         "Admin cannot remove another admin",
			actor:        adminCtx,
			targetUserID: "admin-2",
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "admin-2").
					Return(activeMember("admin-2", types.RoleAdmin, false), nil)
			},
			expectDenied: true,
		},
		{
			name:         "Admin removes themselves",
			actor:        adminCtx,
			targetUserID: "admin-1",
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "admin-1").
					Return(activeMember("admin-1", types.RoleAdmin, false), nil)
				m.EXPECT().RemoveMember(gomock.Any(), "tenant-1", "admin-1").Return(nil)
			},
		},
		{
			name:         "Admin removes a user",
			actor:        adminCtx,
			targetUserID: "user-2",
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "user-2").
					Return(activeMember("user-2", types.RoleUser, false), nil)
				m.EXPECT().RemoveMember(gomock.Any(), "tenant-1", "user-2").Return(nil)
			},
		},
		{
			name:         "Unknown member",
			actor:        adminCtx,
			targetUserID: "ghost",
			setupMocks: func(m *MockStorageInterface) {
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "ghost").
					Return(nil, storage.ErrNotFound)
			},
			expectNotFound: true,
		},
		{
			name:         "Removed member is not found",
			actor:        adminCtx,
			targetUserID: "user-3",
			setupMocks: func(m *MockStorageInterface) {
				removed := activeMember("user-3", types.RoleUser, false)
				removed.Status = types.MembershipRemoved
				m.EXPECT().GetMembership(gomock.Any(), "tenant-1", "user-3").Return(removed, nil)
			},
			expectNotFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			tt.setupMocks(mockStorage)

			service := newTestService(mockStorage, passthroughTx(ctrl), t.TempDir())

			err := service.RemoveMember(context.Background(), tt.actor, tt.targetUserID)

			switch {
			case tt.expectDenied:
				if !types.IsAccessDenied(err) {
					t.Fatalf("expected access denied, got %v", err)
				}
			case tt.expectNotFound:
				if !types.IsNotFound(err) {
					t.Fatalf("expected not found, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}
