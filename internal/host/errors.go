// internal/host/errors.go
package host

import "errors"

var (
	// ErrRegistration wraps any failure during module load. Partial
	// registration is rolled back before it is returned.
	ErrRegistration = errors.New("host: registration failed")

	ErrBusy      = errors.New("host: name or number already registered")
	ErrExhausted = errors.New("host: no free major numbers")
	ErrNotFound  = errors.New("host: not found")
)
