// internal/events/errors.go
package events

import "errors"

var (
	ErrNotConnected     = errors.New("events: client not connected")
	ErrConnectionFailed = errors.New("events: connection failed")
	ErrPublishFailed    = errors.New("events: publish failed")
)
