// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// MembershipStatus is the lifecycle state of a membership row. Rows are never
// hard-deleted, removal flips the status so audit history survives.
type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipRemoved MembershipStatus = "removed"
)

// InvitationStatus is the stored lifecycle state of an invitation. Expiry is
// never stored, it is derived from ExpiresAt at lookup time.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

type Tenant struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description,omitempty"`
	Website     string    `db:"website" json:"website,omitempty"`
	Industry    string    `db:"industry" json:"industry,omitempty"`
	Address     string    `db:"address" json:"address,omitempty"`
	City        string    `db:"city" json:"city,omitempty"`
	State       string    `db:"state" json:"state,omitempty"`
	Country     string    `db:"country" json:"country,omitempty"`
	PostalCode  string    `db:"postal_code" json:"postal_code,omitempty"`
	Phone       string    `db:"phone" json:"phone,omitempty"`
	Email       string    `db:"email" json:"email,omitempty"`
	LogoURL     string    `db:"logo_url" json:"logo_url,omitempty"`
	Enabled     bool      `db:"enabled" json:"enabled"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Membership struct {
	ID        string           `db:"id" json:"id"`
	TenantID  string           `db:"tenant_id" json:"tenant_id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Email     string           `db:"email" json:"email"`
	Role      string           `db:"role" json:"role"`
	IsOwner   bool             `db:"is_owner" json:"is_owner"`
	Status    MembershipStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"joined_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"-"`
}

func (m *Membership) Active() bool {
	return m.Status == MembershipActive
}

type Invitation struct {
	ID         string           `db:"id" json:"id"`
	TenantID   string           `db:"tenant_id" json:"tenant_id"`
	Email      string           `db:"email" json:"email"`
	Role       string           `db:"role" json:"role"`
	Token      string           `db:"token" json:"-"`
	Status     InvitationStatus `db:"status" json:"status"`
	ExpiresAt  time.Time        `db:"expires_at" json:"expires_at"`
	CreatedBy  string           `db:"created_by" json:"created_by"`
	AcceptedBy *string          `db:"accepted_by" json:"accepted_by,omitempty"`
	AcceptedAt *time.Time       `db:"accepted_at" json:"accepted_at,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// Expired reports whether the invitation TTL has elapsed. A pending but
// expired invitation is unusable for lookup and accept.
func (i *Invitation) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

// UserTenant is a tenant as seen by one of its members.
type UserTenant struct {
	Tenant
	Role    string `json:"role"`
	IsOwner bool   `json:"is_owner"`
}

type Property struct {
	ID            string    `db:"id" json:"id"`
	TenantID      string    `db:"tenant_id" json:"tenant_id"`
	Title         string    `db:"title" json:"title"`
	PropertyType  string    `db:"property_type" json:"property_type"`
	FundingGoal   int64     `db:"funding_goal" json:"funding_goal"`
	FundingRaised int64     `db:"funding_raised" json:"funding_raised"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Investment struct {
	ID         string    `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	PropertyID string    `db:"property_id" json:"property_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Amount     int64     `db:"amount" json:"amount"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Transaction struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	InvestmentID string    `db:"investment_id" json:"investment_id"`
	Amount       int64     `db:"amount" json:"amount"`
	TxType       string    `db:"tx_type" json:"tx_type"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
