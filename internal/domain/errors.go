package domain

import "errors"

// Domain errors (no external dependencies). Use cases wrap these with
// fmt.Errorf so callers can still match with errors.Is while the HTTP
// layer surfaces the human-readable reason.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrDuplicateLot        = errors.New("lot number already registered for this material")
	ErrDuplicateCode       = errors.New("code already registered")
	ErrComplianceViolation = errors.New("operation blocked by traceability requirements")
	ErrValidationFailed    = errors.New("business rule validation failed")
	ErrUnauthorized        = errors.New("not authenticated")
	ErrForbidden           = errors.New("access denied")
	ErrConflict            = errors.New("conflict with current state")
)
