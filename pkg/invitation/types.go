// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"time"

	"github.com/canonical/tenancy-service/internal/types"
)

// Preview is the public projection of a pending invitation. It carries just
// enough for a landing page, never the token or tenant internals.
type Preview struct {
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Organization string    `json:"organization"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IssuedInvitation is the admin-facing view of a freshly created or resent
// invitation. It is the only place the raw token leaves the service.
type IssuedInvitation struct {
	*types.Invitation
	Token string `json:"token"`
}
