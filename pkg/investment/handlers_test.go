// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package investment

import (
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

func TestAPI_Properties(t *testing.T) {
	access := types.NewAccessContext("tenant-1", "user-1", types.RoleUser, false)
	adminAccess := types.NewAccessContext("tenant-1", "user-1", types.RoleAdmin, false)

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
			name:           "List properties requires authentication",
			method:         http.MethodGet,
			target:         "/api/v0/tenants/tenant-1/properties",
			setupMocks:     func(s *MockServiceInterface, g *MockGuardInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:          "List properties",
			method:        http.MethodGet,
			target:        "/api/v0/tenants/tenant-1/properties",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				s.EXPECT().ListProperties(gomock.Any(), access).
					Return([]*types.Property{{ID: "prop-1", Title: "Flat"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "Create property requires admin",
			method:        http.MethodPost,
			target:        "/api/v0/tenants/tenant-1/properties",
			body:          `{"title":"Flat","property_type":"residential","funding_goal":100000}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				g.EXPECT().RequireAdmin(gomock.Any(), access).
					Return(types.NewAccessDeniedError("administrator role required"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:          "Create property",
			method:        http.MethodPost,
			target:        "/api/v0/tenants/tenant-1/properties",
			body:          `{"title":"Flat","property_type":"residential","funding_goal":100000}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(adminAccess, nil)
				g.EXPECT().RequireAdmin(gomock.Any(), adminAccess).Return(nil)
				s.EXPECT().CreateProperty(gomock.Any(), adminAccess, gomock.Any()).
					Return(&types.Property{ID: "prop-1", Title: "Flat", Status: PropertyOpen}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:          "Create property with unknown type",
			method:        http.MethodPost,
			target:        "/api/v0/tenants/tenant-1/properties",
			body:          `{"title":"Flat","property_type":"castle","funding_goal":100000}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(adminAccess, nil)
				g.EXPECT().RequireAdmin(gomock.Any(), adminAccess).Return(nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:          "Get property",
			method:        http.MethodGet,
			target:        "/api/v0/tenants/tenant-1/properties/prop-1",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				s.EXPECT().GetProperty(gomock.Any(), access, "prop-1").
					Return(&types.Property{ID: "prop-1"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "Invest",
			method:        http.MethodPost,
			target:        "/api/v0/tenants/tenant-1/properties/prop-1/investments",
			body:          `{"amount":60000}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				s.EXPECT().CreateInvestment(gomock.Any(), access, "prop-1", int64(60000)).
					Return(&types.Investment{ID: "inv-1", Amount: 60000, Status: InvestmentCompleted}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "Invest past the goal",
			method:        http.MethodPost,
			target:        "/api/v0/tenants/tenant-1/properties/prop-1/investments",
			body:          `{"amount":60000}`,
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				s.EXPECT().CreateInvestment(gomock.Any(), access, "prop-1", int64(60000)).
					Return(nil, types.NewConflictError("exceeds remaining funding"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invest with non-positive amount",
			method:         http.MethodPost,
			target:         "/api/v0/tenants/tenant-1/properties/prop-1/investments",
			body:           `{"amount":0}`,
			authenticated:  true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:          "List investments",
			method:        http.MethodGet,
			target:        "/api/v0/tenants/tenant-1/investments",
			authenticated: true,
			setupMocks: func(s *MockServiceInterface, g *MockGuardInterface) {
				g.EXPECT().Resolve(gomock.Any(), "tenant-1", "user-1").Return(access, nil)
				s.EXPECT().ListInvestments(gomock.Any(), access).
					Return([]*types.Investment{{ID: "inv-1"}}, nil)
			},
			expectedStatus: http.StatusOK,
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
