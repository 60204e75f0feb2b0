// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
)

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	tx      TxManagerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	tx TxManagerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		tx:      tx,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// HandleRegistration provisions a personal organization for a fresh signup,
// with the new user as its owner. Tenant and membership are written in one
// transaction.
func (s *Service) HandleRegistration(ctx context.Context, identityID, email string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleRegistration")
	defer span.End()

	if identityID == "" || email == "" {
		return nil, types.NewValidationError("identity id and email are required")
	}

	email = strings.ToLower(email)

	var tenant *types.Tenant

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		created, err := s.storage.CreateTenant(ctx, &types.Tenant{
			Name:  fmt.Sprintf("%s's Org", email),
			Slug:  personalSlug(email),
			Email: email,
		})
		if err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}

		_, err = s.storage.AddMember(ctx, &types.Membership{
			TenantID: created.ID,
			UserID:   identityID,
			Email:    email,
			Role:     types.RoleAdmin,
			IsOwner:  true,
		})
		if err != nil {
			return fmt.Errorf("failed to add founder membership: %w", err)
		}

		tenant = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("provisioned organization %s for user %s", tenant.ID, identityID)
	return tenant, nil
}

// personalSlug derives a unique slug from the email local part. The random
// suffix avoids collisions between signups sharing a local part.
func personalSlug(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = slugCleaner.ReplaceAllString(strings.ToLower(local), "-")
	local = strings.Trim(local, "-")
	if local == "" {
		local = "org"
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return local + "-" + suffix
}
