// internal/device/errors.go
package device

import "errors"

var (
	// ErrCopyFault is returned when caller memory cannot be read (Write) or
	// written (Read). State is left untouched.
	ErrCopyFault = errors.New("device: copy fault")

	// ErrHandleClosed is returned for operations on a released handle.
	ErrHandleClosed = errors.New("device: handle closed")
)

// EFAULT is the errno reported for copy faults on status surfaces.
const EFAULT uint16 = 14
