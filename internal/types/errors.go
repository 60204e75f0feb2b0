// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired signals a request with no authenticated principal.
var ErrAuthenticationRequired = errors.New("authentication required")

// AccessDeniedError covers disabled tenants, missing or revoked memberships,
// insufficient roles and owner invariant violations.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return e.Reason
}

func NewAccessDeniedError(reason string) error {
	return &AccessDeniedError{Reason: reason}
}

func IsAccessDenied(err error) bool {
	var target *AccessDeniedError
	return errors.As(err, &target)
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// ConflictError covers duplicate slugs, duplicate pending invitations,
// already-a-member, stale invitation tokens and exceeded funding goals.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func NewConflictError(reason string) error {
	return &ConflictError{Reason: reason}
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
