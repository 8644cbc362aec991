package errors

import "github.com/pkg/errors"

var (
	// session errors
	ErrMissingSessionID = errors.New("session id is missing")
	ErrSessionNotFound  = errors.New("session not found")

	// provider errors
	ErrProviderNotConfigured = errors.New("payment provider is not configured")
	ErrConnectionTimeout     = errors.New("connection timeout")
)
