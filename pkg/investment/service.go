// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package investment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenancy-service/internal/db"
	"github.com/canonical/tenancy-service/internal/logging"
	"github.com/canonical/tenancy-service/internal/monitoring"
	"github.com/canonical/tenancy-service/internal/tracing"
	"github.com/canonical/tenancy-service/internal/types"
)

const (
	PropertyOpen   = "open"
	PropertyFunded = "funded"

	InvestmentCompleted = "completed"

	txTypeInvestment = "investment"
)

var propertyColumns = []string{
	"id", "tenant_id", "title", "property_type", "funding_goal",
	"funding_raised", "status", "created_at",
}

var investmentColumns = []string{
	"id", "tenant_id", "property_id", "user_id", "amount", "status", "created_at",
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	scoped db.ScopedClientInterface
	tx     TxManagerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	scoped db.ScopedClientInterface,
	tx TxManagerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		scoped:  scoped,
		tx:      tx,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (s *Service) ListProperties(ctx context.Context, access types.AccessContext) ([]*types.Property, error) {
	ctx, span := s.tracer.Start(ctx, "investment.Service.ListProperties")
	defer span.End()

	client := s.scoped.ForTenant(access.TenantID())

	rows, err := client.Query(ctx, "properties", propertyColumns, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	properties := make([]*types.Property, 0)
	for rows.Next() {
		p := new(types.Property)
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.Title, &p.PropertyType,
			&p.FundingGoal, &p.FundingRaised, &p.Status, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}

	return properties, rows.Err()
}

func (s *Service) CreateProperty(ctx context.Context, access types.AccessContext, property *types.Property) (*types.Property, error) {
	ctx, span := s.tracer.Start(ctx, "investment.Service.CreateProperty")
	defer span.End()

	if property.FundingGoal <= 0 {
		return nil, types.NewValidationError("funding goal must be positive")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	property.ID = id.String()
	property.TenantID = access.TenantID()
	property.FundingRaised = 0
	property.Status = PropertyOpen
	property.CreatedAt = now

	client := s.scoped.ForTenant(access.TenantID())
	_, err = client.Insert(ctx, "properties", map[string]interface{}{
		"id":             property.ID,
		"title":          property.Title,
		"property_type":  property.PropertyType,
		"funding_goal":   property.FundingGoal,
		"funding_raised": property.FundingRaised,
		"status":         property.Status,
		"created_at":     property.CreatedAt,
	})
	if err != nil {
		s.logger.Errorf("failed to create property: %v", err)
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	return property, nil
}

func (s *Service) GetProperty(ctx context.Context, access types.AccessContext, id string) (*types.Property, error) {
	ctx, span := s.tracer.Start(ctx, "investment.Service.GetProperty")
	defer span.End()

	return s.getProperty(ctx, s.scoped.ForTenant(access.TenantID()), id)
}

func (s *Service) ListInvestments(ctx context.Context, access types.AccessContext) ([]*types.Investment, error) {
	ctx, span := s.tracer.Start(ctx, "investment.Service.ListInvestments")
	defer span.End()

	client := s.scoped.ForTenant(access.TenantID())

	rows, err := client.Query(ctx, "investments", investmentColumns, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	investments := make([]*types.Investment, 0)
	for rows.Next() {
		inv := new(types.Investment)
		if err := rows.Scan(
			&inv.ID, &inv.TenantID, &inv.PropertyID, &inv.UserID,
			&inv.Amount, &inv.Status, &inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}

	return investments, rows.Err()
}

// CreateInvestment performs the funding mutation. The headroom check lives in
// the WHERE clause of the increment, zero affected rows means the property is
// missing, closed or would overfund. A read-then-write would race under
// concurrent submissions.
func (s *Service) CreateInvestment(ctx context.Context, access types.AccessContext, propertyID string, amount int64) (*types.Investment, error) {
	ctx, span := s.tracer.Start(ctx, "investment.Service.CreateInvestment")
	defer span.End()

	if amount <= 0 {
		return nil, types.NewValidationError("amount must be positive")
	}

	var investment *types.Investment

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		client := s.scoped.ForTenant(access.TenantID())

		res, err := client.Update(ctx, "properties",
			sq.And{
				sq.Eq{"id": propertyID},
				sq.Eq{"status": PropertyOpen},
				sq.Expr("funding_raised + ? <= funding_goal", amount),
			},
			map[string]interface{}{
				"funding_raised": sq.Expr("funding_raised + ?", amount),
			},
		)
		if err != nil {
			return fmt.Errorf("failed to apply funding increment: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.fundingRejection(ctx, client, propertyID)
		}

		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		investment = &types.Investment{
			ID:         id.String(),
			TenantID:   access.TenantID(),
			PropertyID: propertyID,
			UserID:     access.UserID(),
			Amount:     amount,
			Status:     InvestmentCompleted,
			CreatedAt:  now,
		}

		if _, err := client.Insert(ctx, "investments", map[string]interface{}{
			"id":          investment.ID,
			"property_id": investment.PropertyID,
			"user_id":     investment.UserID,
			"amount":      investment.Amount,
			"status":      investment.Status,
			"created_at":  investment.CreatedAt,
		}); err != nil {
			return fmt.Errorf("failed to record investment: %w", err)
		}

		txID, err := uuid.NewV7()
		if err != nil {
			return err
		}

		if _, err := client.Insert(ctx, "transactions", map[string]interface{}{
			"id":            txID.String(),
			"investment_id": investment.ID,
			"amount":        investment.Amount,
			"tx_type":       txTypeInvestment,
			"created_at":    now,
		}); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return investment, nil
}

// fundingRejection turns a zero-row increment into the precise client error.
func (s *Service) fundingRejection(ctx context.Context, client db.ScopedClientInterface, propertyID string) error {
	property, err := s.getProperty(ctx, client, propertyID)
	if err != nil {
		return err
	}
	if property.Status != PropertyOpen {
		return types.NewConflictError("property is not open for funding")
	}
	return types.NewConflictError("exceeds remaining funding")
}

func (s *Service) getProperty(ctx context.Context, client db.ScopedClientInterface, id string) (*types.Property, error) {
	row, err := client.QueryRow(ctx, "properties", propertyColumns, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}

	p := new(types.Property)
	if err := row.Scan(
		&p.ID, &p.TenantID, &p.Title, &p.PropertyType,
		&p.FundingGoal, &p.FundingRaised, &p.Status, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NewNotFoundError("property")
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return p, nil
}
