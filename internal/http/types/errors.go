// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"errors"
	"net/http"

	"github.com/canonical/tenancy-service/internal/types"
)

// WriteErrorResponse maps domain errors onto the HTTP error taxonomy. Anything
// outside the known taxonomy is reported as an opaque 500, internals never
// reach the client.
func WriteErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrAuthenticationRequired):
		WriteMessageResponse(w, http.StatusUnauthorized, "authentication required")
	case types.IsAccessDenied(err):
		WriteMessageResponse(w, http.StatusForbidden, err.Error())
	case types.IsNotFound(err):
		WriteMessageResponse(w, http.StatusNotFound, err.Error())
	// Conflicts share 400 with validation failures, there is no 409 in the
	// public taxonomy.
	case types.IsValidation(err), types.IsConflict(err):
		WriteMessageResponse(w, http.StatusBadRequest, err.Error())
	default:
		WriteMessageResponse(w, http.StatusInternalServerError, "internal server error")
	}
}
