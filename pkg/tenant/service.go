// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/storage"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
	"github.com/canonical/tenancy-service/pkg/authentication"
)

const maxLogoSize = 5 << 20 // 5 MB

// mutableTenantFields maps accepted payload fields to their columns. Anything
// outside this map is dropped from a profile update without complaint.
var mutableTenantFields = map[string]string{
	"name":        "name",
	"description": "description",
	"website":     "website",
	"industry":    "industry",
	"address":     "address",
	"city":        "city",
	"state":       "state",
	"country":     "country",
	"postalCode":  "postal_code",
	"phone":       "phone",
	"email":       "email",
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage   StorageInterface
	tx        TxManagerInterface
	uploadDir string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	tx TxManagerInterface,
	uploadDir string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:   storage,
		tx:        tx,
		uploadDir: uploadDir,
		tracer:    tracer,
		monitor:   monitor,
		logger:    logger,
	}
}

func (s *Service) ListTenantsForUser(ctx context.Context, userID string) ([]*types.UserTenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenantsForUser")
	defer span.End()

	return s.storage.ListTenantsByUserID(ctx, userID)
}

func (s *Service) GetTenant(ctx context.Context, access types.AccessContext) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	tenant, err := s.storage.GetTenantByID(ctx, access.TenantID())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.NewNotFoundError("organization")
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}

func (s *Service) CreateTenant(ctx context.Context, principal *authentication.Principal, tenant *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateTenant")
	defer span.End()

	if principal == nil || principal.ID == "" {
		return nil, types.ErrAuthenticationRequired
	}

	var created *types.Tenant
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.storage.CreateTenant(ctx, tenant)
		if err != nil {
			return err
		}

		_, err = s.storage.AddMember(ctx, &types.Membership{
			TenantID: created.ID,
			UserID:   principal.ID,
			Email:    principal.Email,
			Role:     types.RoleAdmin,
			IsOwner:  true,
		})
		return err
	})

	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, types.NewConflictError("organization slug already taken")
		}
		s.logger.Errorf("failed to create tenant: %v", err)
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	return created, nil
}

func (s *Service) UpdateTenant(ctx context.Context, access types.AccessContext, fields map[string]interface{}) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UpdateTenant")
	defer span.End()

	columns := make(map[string]interface{})
	for field, value := range fields {
		column, ok := mutableTenantFields[field]
		if !ok {
			continue
		}

		text, ok := value.(string)
		if !ok {
			return nil, types.NewValidationError(fmt.Sprintf("%s must be a string", field))
		}
		columns[column] = text
	}

	if len(columns) > 0 {
		if err := s.storage.UpdateTenant(ctx, access.TenantID(), columns); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, types.NewNotFoundError("organization")
			}
			return nil, fmt.Errorf("failed to update tenant: %w", err)
		}
	}

	return s.GetTenant(ctx, access)
}

func (s *Service) UploadLogo(ctx context.Context, access types.AccessContext, filename, contentType string, size int64, content io.Reader) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UploadLogo")
	defer span.End()

	if size > maxLogoSize {
		return nil, types.NewValidationError("logo exceeds the 5 MB limit")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, types.NewValidationError("logo must be an image")
	}

	name := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(filename))
	path := filepath.Join(s.uploadDir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, io.LimitReader(content, maxLogoSize)); err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}

	logoURL := "/uploads/" + name
	if err := s.storage.SetTenantLogo(ctx, access.TenantID(), logoURL); err != nil {
		return nil, fmt.Errorf("failed to set tenant logo: %w", err)
	}

	return s.GetTenant(ctx, access)
}
