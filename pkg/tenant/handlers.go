// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	httptypes "github.com/canonical/tenancy-service/internal/http/types"
	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
	"github.com/canonical/tenancy-service/pkg/authentication"
)

var slugRegexp = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CreateTenantRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Slug        string `json:"slug" validate:"required,min=2,max=63,slug"`
	Description string `json:"description" validate:"max=1000"`
	Website     string `json:"website" validate:"omitempty,url"`
	Industry    string `json:"industry" validate:"max=120"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type API struct {
	service ServiceInterface
	guard   GuardInterface

	validate *validator.Validate
	tracer   tracing.TracingInterface
	monitor  monitoring.MonitorInterface
	logger   logging.LoggerInterface
}

func NewAPI(
	service ServiceInterface,
	guard GuardInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	validate := validator.New()
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegexp.MatchString(fl.Field().String())
	})

	return &API{
		service:  service,
		guard:    guard,
		validate: validate,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/tenants", a.listTenants)
	mux.Post("/api/v0/tenants", a.createTenant)
	mux.Get("/api/v0/tenants/{tenantId}", a.getTenant)
	mux.Patch("/api/v0/tenants/{tenantId}", a.updateTenant)
	mux.Post("/api/v0/tenants/{tenantId}/logo", a.uploadLogo)
	mux.Get("/api/v0/tenants/{tenantId}/users", a.listMembers)
	mux.Patch("/api/v0/tenants/{tenantId}/users/{userId}", a.changeRole)
	mux.Delete("/api/v0/tenants/{tenantId}/users/{userId}", a.removeMember)
}

func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listTenants")
	defer span.End()

	principal, ok := authentication.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteErrorResponse(w, types.ErrAuthenticationRequired)
		return
	}

	tenants, err := a.service.ListTenantsForUser(ctx, principal.ID)
	if err != nil {
		a.logger.Errorf("failed to list tenants: %v", err)
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, tenants)
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.createTenant")
	defer span.End()

	principal, ok := authentication.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteErrorResponse(w, types.ErrAuthenticationRequired)
		return
	}

	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError("invalid request body"))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError(err.Error()))
		return
	}

	created, err := a.service.CreateTenant(ctx, principal, &types.Tenant{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Website:     req.Website,
		Industry:    req.Industry,
	})
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusCreated, created)
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.getTenant")
	defer span.End()

	access, err := a.resolveAccess(r, false)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	tenant, err := a.service.GetTenant(ctx, access)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, tenant)
}

func (a *API) updateTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.updateTenant")
	defer span.End()

	access, err := a.resolveAccess(r, true)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError("invalid request body"))
		return
	}

	updated, err := a.service.UpdateTenant(ctx, access, fields)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, updated)
}

func (a *API) uploadLogo(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.uploadLogo")
	defer span.End()

	access, err := a.resolveAccess(r, true)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoSize+1<<20)
	file, header, err := r.FormFile("logo")
	if err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError("a logo file is required"))
		return
	}
	defer file.Close()

	updated, err := a.service.UploadLogo(ctx, access, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, updated)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listMembers")
	defer span.End()

	access, err := a.resolveAccess(r, false)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	members, err := a.service.ListMembers(ctx, access)
	if err != nil {
		a.logger.Errorf("failed to list members: %v", err)
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, members)
}

func (a *API) changeRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.changeRole")
	defer span.End()

	access, err := a.resolveAccess(r, true)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError("invalid request body"))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError(err.Error()))
		return
	}

	member, err := a.service.ChangeRole(ctx, access, chi.URLParam(r, "userId"), req.Role)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, member)
}

func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.removeMember")
	defer span.End()

	access, err := a.resolveAccess(r, true)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	if err := a.service.RemoveMember(ctx, access, chi.URLParam(r, "userId")); err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteMessageResponse(w, http.StatusOK, "member removed")
}

// resolveAccess authenticates the request against the tenant in the URL and
// optionally applies the admin gate.
func (a *API) resolveAccess(r *http.Request, adminOnly bool) (types.AccessContext, error) {
	ctx := r.Context()

	principal, ok := authentication.PrincipalFromContext(ctx)
	if !ok {
		return types.AccessContext{}, types.ErrAuthenticationRequired
	}

	access, err := a.guard.Resolve(ctx, chi.URLParam(r, "tenantId"), principal.ID)
	if err != nil {
		return types.AccessContext{}, err
	}

	if adminOnly {
		if err := a.guard.RequireAdmin(ctx, access); err != nil {
			return types.AccessContext{}, err
		}
	}

	return access, nil
}
