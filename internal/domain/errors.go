package domain

import "errors"

// Sentinel errors for errors.Is() checking. The structured field-level detail
// behind a validation failure travels in a *validation.Error, which unwraps
// to one of these sentinels according to its dominant error code.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrDuplicate     = errors.New("duplicate")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("forbidden")
	ErrUnprocessable = errors.New("unprocessable entity")
	ErrUnavailable   = errors.New("unavailable")
)
