// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
	"github.com/canonical/tenancy-service/pkg/authentication"
)

func newTestAPI(service ServiceInterface, guard GuardInterface) *chi.Mux {
	api := NewAPI(service, guard, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())
	mux := chi.NewMux()
	api.RegisterEndpoints(mux)
	return mux
}

func authenticated(r *http.Request, userID string) *http.Request {
	principal := &authentication.Principal{ID: userID, Email: userID + "@example.com"}
	return r.WithContext(authentication.WithPrincipal(r.Context(), principal))
}

func TestAPI_Tenants(t *testing.T) {
	access := types.NewAccessContext("tenant-1", "user-1", types.RoleAdmin, false)

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		authenticated  bool
		setupMocks     func(*MockServiceInterface, *MockGuardInterface)
		expectedStatus int
	}{
		{
			name:           "List tenants requires authentication",
			method:         http.MethodGet,
			target:         "/api/v0/tenants",
			setupMocks:     func(s *MockServiceInterface, g *MockGuardInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:          "List tenants",
			method:        http.MethodGet,
			target:        "/api/v0/tenants",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				s.EXPECT().ListTenantsForUser(gomock.Any(), "user-1").
					Return([]*types.UserTenant{{Tenant: types.Tenant{ID: "tenant-1"}, Role: types.RoleAdmin}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "Get tenant resolves membership",
			method:        http.MethodGet,
			target:        "/api/v0/tenants/tenant-1",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				s.EXPECT().GetTenant(gomock.Any(), access).Return(&types.Tenant{ID: "tenant-1"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "Get tenant for non-member is denied",
			method:        http.MethodGet,
			target:        "/api/v0/tenants/tenant-1",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").
					Return(types.AccessContext{}, types.NewAccessDeniedError("no access to this organization"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:          "Get unknown tenant",
			method:        http.MethodGet,
			target:        "/api/v0/tenants/ghost",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "ghost", "user-1").
					Return(types.AccessContext{}, types.NewNotFoundError("organization"))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Create tenant with invalid body",
			method:         http.MethodPost,
			target:         "/api/v0/tenants",
			body:           `{"name":"Acme"}`,
			authenticated:  true,
			setupMocks:     func(s *MockServiceInterface, g *MockGuardInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:          "Create tenant",
			method:        http.MethodPost,
			target:        "/api/v0/tenants",
			body:          `{"name":"Acme","slug":"acme"}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				s.EXPECT().CreateTenant(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&types.Tenant{ID: "tenant-1", Name: "Acme", Slug: "acme"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:          "Update tenant requires admin",
			method:        http.MethodPatch,
			target:        "/api/v0/tenants/tenant-1",
			body:          `{"name":"New"}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				g.EXPECT().RequireAdmin(gomock.Any(), access).
					Return(types.NewAccessDeniedError("administrator role required"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:          "Change member role",
			method:        http.MethodPatch,
			target:        "/api/v0/tenants/tenant-1/users/user-2",
			body:          `{"role":"admin"}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				g.EXPECT().RequireAdmin(gomock.Any(), access).Return(nil)
				s.EXPECT().ChangeRole(gomock.Any(), access, "user-2", types.RoleAdmin).
					Return(&types.Membership{UserID: "user-2", Role: types.RoleAdmin}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "Change role to unknown value",
			method:        http.MethodPatch,
			target:        "/api/v0/tenants/tenant-1/users/user-2",
			body:          `{"role":"root"}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				g.EXPECT().RequireAdmin(gomock.Any(), access).Return(nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:          "Remove owner is denied",
			method:        http.MethodDelete,
			target:        "/api/v0/tenants/tenant-1/users/owner-1",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				g.EXPECT().RequireAdmin(gomock.Any(), access).Return(nil)
				s.EXPECT().RemoveMember(gomock.Any(), access, "owner-1").
					Return(types.NewAccessDeniedError("the owner cannot be removed"))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			mockGuard := NewMockGuardInterface(ctrl)
			tt.setupMocks(mockService, mockGuard)

			mux := newTestAPI(mockService, mockGuard)

			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}

			req := httptest.NewRequest(tt.method, tt.target, body)
			if tt.authenticated {
				req = authenticated(req, "user-1")
			}
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAPI_ResolveAccessPropagatesContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockServiceInterface(ctrl)
	mockGuard := NewMockGuardInterface(ctrl)

	access := types.NewAccessContext("tenant-1", "user-1", types.RoleUser, false)
	mockGuard.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
	mockService.EXPECT().ListMembers(gomock.Any(), access).DoAndReturn(
		func(_ context.Context, got types.AccessContext) ([]*types.Membership, error) {
			if !got.Resolved() {
				t.Error("service must receive a resolved access context")
			}
			return nil, nil
		},
	)

	mux := newTestAPI(mockService, mockGuard)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v0/tenants/tenant-1/users", nil), "user-1")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}
