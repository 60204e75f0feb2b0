// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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
	api.RegisterPublicEndpoints(mux)
	api.RegisterEndpoints(mux)
	return mux
}

func authenticated(r *http.Request, userID string) *http.Request {
	principal := &authentication.Principal{ID: userID, Email: userID + "@example.com"}
	return r.WithContext(authentication.WithPrincipal(r.Context(), principal))
}

func TestAPI_Invitations(t *testing.T) {
	access := types.NewAccessContext("tenant-1", "admin-1", types.RoleAdmin, false)

	adminResolved := func(g *MockGuardInterface) {
		g.EXPECT().Resolve(gomock.Any(), "tenant-1", "admin-1").Return(access, nil)
		g.EXPECT().RequireAdmin(gomock.Any(), access).Return(nil)
	}

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
			name:   "Public token lookup",
			method: http.MethodGet,
			target: "/api/v0/invitations/tok",
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				s.EXPECT().GetByToken(gomock.Any(), "tok").
					Return(&Preview{Email: "bob@x.com", Role: types.RoleUser, Organization: "Acme", ExpiresAt: time.Now().Add(time.Hour)}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Public lookup for stale token",
			method: http.MethodGet,
			target: "/api/v0/invitations/tok",
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				s.EXPECT().GetByToken(gomock.Any(), "tok").Return(nil, types.NewNotFoundError("invitation"))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Accept requires authentication",
			method:         http.MethodPost,
			target:         "/api/v0/invitations/tok/accept",
			setupMocks:     func(s *MockServiceInterface, g *MockGuardInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:          "Accept",
			method:        http.MethodPost,
			target:        "/api/v0/invitations/tok/accept",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				s.EXPECT().Accept(gomock.Any(), gomock.Any(), "tok").
					Return(&types.Membership{TenantID: "tenant-1", UserID: "admin-1", Role: types.RoleUser}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "Accept already processed token",
			method:        http.MethodPost,
			target:        "/api/v0/invitations/tok/accept",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				s.EXPECT().Accept(gomock.Any(), gomock.Any(), "tok").
					Return(nil, types.NewConflictError("invitation already processed or expired"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:          "List invitations",
			method:        http.MethodGet,
			target:        "/api/v0/tenants/tenant-1/invitations",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				adminResolved(g)
				s.EXPECT().List(gomock.Any(), access).
					Return([]*types.Invitation{{ID: "inv-1", Email: "bob@x.com"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "List requires admin",
			method:        http.MethodGet,
			target:        "/api/v0/tenants/tenant-1/invitations",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "admin-1").Return(access, nil)
				g.EXPECT().RequireAdmin(gomock.Any(), access).
					Return(types.NewAccessDeniedError("administrator role required"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Create with invalid email",
			method:         http.MethodPost,
			target:         "/api/v0/tenants/tenant-1/invitations",
			body:           `{"email":"not-an-email","role":"user"}`,
			authenticated:  true,
			setupMocks:     func(s *MockServiceInterface, g *MockGuardInterface) { adminResolved(g) },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Create with unknown role",
			method:         http.MethodPost,
			target:         "/api/v0/tenants/tenant-1/invitations",
			body:           `{"email":"bob@x.com","role":"root"}`,
			authenticated:  true,
			setupMocks:     func(s *MockServiceInterface, g *MockGuardInterface) { adminResolved(g) },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:          "Create",
			method:        http.MethodPost,
			target:        "/api/v0/tenants/tenant-1/invitations",
			body:          `{"email":"bob@x.com","role":"user"}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				adminResolved(g)
				s.EXPECT().Create(gomock.Any(), access, "bob@x.com", types.RoleUser).
					Return(&types.Invitation{ID: "inv-1", Email: "bob@x.com", Token: "tok"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:          "Create for existing member",
			method:        http.MethodPost,
			target:        "/api/v0/tenants/tenant-1/invitations",
			body:          `{"email":"bob@x.com","role":"user"}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				adminResolved(g)
				s.EXPECT().Create(gomock.Any(), access, "bob@x.com", types.RoleUser).
					Return(nil, types.NewConflictError("this email already belongs to an active member"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:          "Resend",
			method:        http.MethodPost,
			target:        "/api/v0/tenants/tenant-1/invitations/inv-1/resend",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				adminResolved(g)
				s.EXPECT().Resend(gomock.Any(), access, "inv-1").
					Return(&types.Invitation{ID: "inv-1", Token: "fresh"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "Revoke",
			method:        http.MethodDelete,
			target:        "/api/v0/tenants/tenant-1/invitations/inv-1",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				adminResolved(g)
				s.EXPECT().Revoke(gomock.Any(), access, "inv-1").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "Revoke unknown invitation",
			method:        http.MethodDelete,
			target:        "/api/v0/tenants/tenant-1/invitations/ghost",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				adminResolved(g)
				s.EXPECT().Revoke(gomock.Any(), access, "ghost").
					Return(types.NewNotFoundError("invitation"))
			},
			expectedStatus: http.StatusNotFound,
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

			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.authenticated {
				req = authenticated(req, "admin-1")
			}
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAPI_CreateReturnsToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := types.NewAccessContext("tenant-1", "admin-1", types.RoleAdmin, false)

	mockService := NewMockServiceInterface(ctrl)
	mockGuard := NewMockGuardInterface(ctrl)
	mockGuard.EXPECT().Resolve(gomock.Any(), "tenant-1", "admin-1").Return(access, nil)
	mockGuard.EXPECT().RequireAdmin(gomock.Any(), access).Return(nil)
	mockService.EXPECT().Create(gomock.Any(), access, "bob@x.com", types.RoleUser).
		Return(&types.Invitation{ID: "inv-1", Email: "bob@x.com", Token: "tok-123"}, nil)

	mux := newTestAPI(mockService, mockGuard)

	req := authenticated(
		httptest.NewRequest(http.MethodPost, "/api/v0/tenants/tenant-1/invitations", strings.NewReader(`{"email":"bob@x.com","role":"user"}`)),
		"admin-1",
	)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Token != "tok-123" {
		t.Errorf("expected the raw token in the create response, got %q", resp.Data.Token)
	}
}
