// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package investment

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

type CreatePropertyRequest struct {
	Title        string `json:"title" validate:"required,min=2,max=200"`
	PropertyType string `json:"property_type" validate:"required,oneof=residential commercial industrial land"`
	FundingGoal  int64  `json:"funding_goal" validate:"required,gt=0"`
}

type CreateInvestmentRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
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

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/tenants/{tenantId}/properties", a.listProperties)
	mux.Post("/api/v0/tenants/{tenantId}/properties", a.createProperty)
	mux.Get("/api/v0/tenants/{tenantId}/properties/{propertyId}", a.getProperty)
	mux.Post("/api/v0/tenants/{tenantId}/properties/{propertyId}/investments", a.createInvestment)
	mux.Get("/api/v0/tenants/{tenantId}/investments", a.listInvestments)
}

func (a *API) listProperties(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "investment.API.listProperties")
	defer span.End()

	access, err := a.resolveAccess(r, false)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	properties, err := a.service.ListProperties(ctx, access)
	if err != nil {
		a.logger.Errorf("failed to list properties: %v", err)
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, properties)
}

func (a *API) createProperty(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "investment.API.createProperty")
	defer span.End()

	access, err := a.resolveAccess(r, true)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	var req CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError("invalid request body"))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError(err.Error()))
		return
	}

	property, err := a.service.CreateProperty(ctx, access, &types.Property{
		Title:        req.Title,
		PropertyType: req.PropertyType,
		FundingGoal:  req.FundingGoal,
	})
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusCreated, property)
}

func (a *API) getProperty(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "investment.API.getProperty")
	defer span.End()

	access, err := a.resolveAccess(r, false)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	property, err := a.service.GetProperty(ctx, access, chi.URLParam(r, "propertyId"))
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, property)
}

func (a *API) createInvestment(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "investment.API.createInvestment")
	defer span.End()

	access, err := a.resolveAccess(r, false)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	var req CreateInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError("invalid request body"))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError(err.Error()))
		return
	}

	investment, err := a.service.CreateInvestment(ctx, access, chi.URLParam(r, "propertyId"), req.Amount)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, investment)
}

func (a *API) listInvestments(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "investment.API.listInvestments")
	defer span.End()

	access, err := a.resolveAccess(r, false)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	investments, err := a.service.ListInvestments(ctx, access)
	if err != nil {
		a.logger.Errorf("failed to list investments: %v", err)
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, investments)
}

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
