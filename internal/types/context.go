// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

// AccessContext is the immutable authorization context produced once per
// request after membership resolution. It is passed explicitly through
// service calls, never stashed in ambient request state.
type AccessContext struct {
	tenantID string
	userID   string
	role     string
	isOwner  bool
	resolved bool
}

func NewAccessContext(tenantID, userID, role string, isOwner bool) AccessContext {
	return AccessContext{
		tenantID: tenantID,
		userID:   userID,
		role:     role,
		isOwner:  isOwner,
		resolved: true,
	}
}

func (c AccessContext) TenantID() string { return c.tenantID }
func (c AccessContext) UserID() string   { return c.userID }
func (c AccessContext) Role() string     { return c.role }
func (c AccessContext) IsOwner() bool    { return c.isOwner }

// Resolved reports whether this context went through the access guard. The
// zero value is unresolved and must never reach a role gate.
func (c AccessContext) Resolved() bool { return c.resolved }
