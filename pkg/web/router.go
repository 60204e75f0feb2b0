// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/tenancy-service/internal/db"
	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/pkg/authentication"
	"github.com/canonical/tenancy-service/pkg/invitation"
	"github.com/canonical/tenancy-service/pkg/investment"
	"github.com/canonical/tenancy-service/pkg/metrics"
	"github.com/canonical/tenancy-service/pkg/status"
	"github.com/canonical/tenancy-service/pkg/tenant"
	"github.com/canonical/tenancy-service/pkg/webhooks"
)

func NewRouter(
	tenantAPI *tenant.API,
	invitationAPI *invitation.API,
	investmentAPI *investment.API,
	webhooksAPI *webhooks.API,
	authMiddleware *authentication.Middleware,
	dbClient db.DBClientInterface,
	uploadDir string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(tracer, monitor, logger).RegisterEndpoints(router)

	// Invitation landing page lookup, signup webhook and uploaded logos stay
	// public.
	invitationAPI.RegisterPublicEndpoints(router)
	webhooksAPI.RegisterEndpoints(router)
	router.Get("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))).ServeHTTP)

	protected := chi.NewMux()
	protected.Use(authMiddleware.Authenticate())
	protected.Use(db.TransactionMiddleware(dbClient, logger))

	tenantAPI.RegisterEndpoints(protected)
	invitationAPI.RegisterEndpoints(protected)
	investmentAPI.RegisterEndpoints(protected)

	router.Mount("/", protected)

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
