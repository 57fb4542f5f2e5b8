// Package common defines sentinel errors and small helpers shared by the
// server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors, rejected before any write.
	ErrValidation      = errors.New("validation error")
	ErrCapacityReached = errors.New("registration capacity reached")

	// Conflict errors.
	ErrAwardTaken      = errors.New("award category already assigned")
	ErrAlreadyAccepted = errors.New("invite already accepted")
	ErrAlreadyExists   = errors.New("already exists")

	// Webhook errors.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// Auth errors.
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrInviteExpired = errors.New("invite expired")

	// ErrNotConfigured is returned by optional integrations that have no credentials.
	ErrNotConfigured = errors.New("integration not configured")
)
