// Package service provides business logic services for Acervo.
package service

import "errors"

// Common service errors.
var (
	// ErrInternalError wraps unexpected infrastructure failures so handlers
	// can map them to a generic 500 without leaking store details.
	ErrInternalError = errors.New("erro interno do servidor")
)
