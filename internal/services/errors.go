package services

import "errors"

var (
	ErrNoSession          = errors.New("calibration session not found")
	ErrPersistFailed      = errors.New("failed to persist preferences")
	ErrVerificationFailed = errors.New("onboarding completion could not be verified")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
