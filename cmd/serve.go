// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/tenancy-service/internal/config"
	"github.com/canonical/tenancy-service/internal/db"
	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/monitoring/prometheus"
	"github.com/canonical/tenancy-service/internal/storage"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/pkg/access"
	"github.com/canonical/tenancy-service/pkg/authentication"
	"github.com/canonical/tenancy-service/pkg/invitation"
	"github.com/canonical/tenancy-service/pkg/investment"
	"github.com/canonical/tenancy-service/pkg/tenant"
	"github.com/canonical/tenancy-service/pkg/web"
	"github.com/canonical/tenancy-service/pkg/webhooks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("tenancy-service", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()

	s := storage.NewStorage(dbClient, tracer, monitor, logger)
	scopedClient := db.NewScopedClient(
		dbClient,
		db.NewTableRegistry("properties", "investments", "transactions"),
		tracer,
		logger,
	)

	guard := access.NewGuard(s, tracer, monitor, logger)

	verifier, err := newTokenVerifier(specs, tracer, monitor, logger)
	if err != nil {
		return err
	}
	authMiddleware := authentication.NewMiddleware(verifier, tracer, monitor, logger)

	if err := os.MkdirAll(specs.UploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %v", err)
	}

	tenantService := tenant.NewService(s, dbClient, specs.UploadDir, tracer, monitor, logger)
	invitationService := invitation.NewService(s, dbClient, specs.InvitationLifetime, tracer, monitor, logger)
	investmentService := investment.NewService(scopedClient, dbClient, tracer, monitor, logger)
	webhooksService := webhooks.NewService(s, dbClient, tracer, monitor, logger)

	router := web.NewRouter(
		tenant.NewAPI(tenantService, guard, tracer, monitor, logger),
		invitation.NewAPI(invitationService, guard, tracer, monitor, logger),
		investment.NewAPI(investmentService, guard, tracer, monitor, logger),
		webhooks.NewAPI(webhooksService),
		authMiddleware,
		dbClient,
		specs.UploadDir,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

func newTokenVerifier(
	specs *config.EnvSpec,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (authentication.TokenVerifierInterface, error) {
	if !specs.AuthenticationEnabled {
		logger.Info("Authentication is disabled, using noop token verifier")
		return authentication.NewNoopVerifier(), nil
	}

	if specs.JWKSURL != "" {
		keySet := oidc.NewRemoteKeySet(context.Background(), specs.JWKSURL)
		idTokenVerifier := oidc.NewVerifier(specs.OIDCIssuer, keySet, &oidc.Config{
			SkipClientIDCheck: true,
		})
		return authentication.NewJWTVerifierDirect(idTokenVerifier, specs.AllowedSubjects, specs.RequiredScope, tracer, monitor, logger), nil
	}

	if specs.OIDCIssuer == "" {
		return nil, fmt.Errorf("authentication enabled but no OIDC issuer or JWKS URL configured")
	}

	provider, err := oidc.NewProvider(context.Background(), specs.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to query OIDC provider: %v", err)
	}

	return authentication.NewJWTVerifier(provider, specs.OIDCIssuer, specs.AllowedSubjects, specs.RequiredScope, tracer, monitor, logger), nil
}
