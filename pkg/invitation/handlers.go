// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	httptypes "github.com/canonical/tenancy-service/internal/http/types"
	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
	"github.com/canonical/tenancy-service/pkg/authentication"
)

type CreateInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=user admin"`
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
	return &API{
		service:  service,
		guard:    guard,
		validate: validator.New(),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

// RegisterPublicEndpoints mounts the unauthenticated invitation lookup.
func (a *API) RegisterPublicEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/invitations/{token}", a.getByToken)
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/api/v0/invitations/{token}/accept", a.accept)
	mux.Get("/api/v0/tenants/{tenantId}/invitations", a.list)
	mux.Post("/api/v0/tenants/{tenantId}/invitations", a.create)
	mux.Post("/api/v0/tenants/{tenantId}/invitations/{id}/resend", a.resend)
	mux.Delete("/api/v0/tenants/{tenantId}/invitations/{id}", a.revoke)
}

func (a *API) getByToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invitation.API.getByToken")
	defer span.End()

	preview, err := a.service.GetByToken(ctx, chi.URLParam(r, "token"))
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, preview)
}

func (a *API) accept(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invitation.API.accept")
	defer span.End()

	principal, ok := authentication.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteErrorResponse(w, types.ErrAuthenticationRequired)
		return
	}

	membership, err := a.service.Accept(ctx, principal, chi.URLParam(r, "token"))
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, membership)
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invitation.API.list")
	defer span.End()

	access, err := a.adminAccess(r)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	invitations, err := a.service.List(ctx, access)
	if err != nil {
		a.logger.Errorf("failed to list invitations: %v", err)
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, invitations)
}

func (a *API) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invitation.API.create")
	defer span.End()

	access, err := a.adminAccess(r)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	var req CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError("invalid request body"))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError(err.Error()))
		return
	}

	created, err := a.service.Create(ctx, access, req.Email, req.Role)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusCreated, &IssuedInvitation{Invitation: created, Token: created.Token})
}

func (a *API) resend(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invitation.API.resend")
	defer span.End()

	access, err := a.adminAccess(r)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	updated, err := a.service.Resend(ctx, access, chi.URLParam(r, "id"))
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, &IssuedInvitation{Invitation: updated, Token: updated.Token})
}

func (a *API) revoke(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invitation.API.revoke")
	defer span.End()

	access, err := a.adminAccess(r)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	if err := a.service.Revoke(ctx, access, chi.URLParam(r, "id")); err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteMessageResponse(w, http.StatusOK, "invitation revoked")
}

func (a *API) adminAccess(r *http.Request) (types.AccessContext, error) {
	ctx := r.Context()

	principal, ok := authentication.PrincipalFromContext(ctx)
	if !ok {
		return types.AccessContext{}, types.ErrAuthenticationRequired
	}

	access, err := a.guard.Resolve(ctx, chi.URLParam(r, "tenantId"), principal.ID)
	if err != nil {
		return types.AccessContext{}, err
	}

	if err := a.guard.RequireAdmin(ctx, access); err != nil {
		return types.AccessContext{}, err
	}

	return access, nil
}
