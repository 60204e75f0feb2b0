// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/tenancy-service/internal/http/types"
	"github.com/canonical/tenancy-service/internal/types"
)

type API struct {
	service ServiceInterface
}

func NewAPI(service ServiceInterface) *API {
	return &API{
		service: service,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/webhooks/registration", a.registration)
}

func (a *API) registration(w http.ResponseWriter, r *http.Request) {
	var event RegistrationEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		httptypes.WriteErrorResponse(w, types.NewValidationError("invalid request body"))
		return
	}

	tenant, err := a.service.HandleRegistration(r.Context(), event.ID, event.Traits.Email)
	if err != nil {
		httptypes.WriteErrorResponse(w, err)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, tenant)
}
