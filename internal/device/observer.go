// internal/device/observer.go
package device

import "time"

// EventKind identifies an endpoint lifecycle event.
type EventKind string

const (
	EventOpen    EventKind = "open"
	EventWrite   EventKind = "write"
	EventRead    EventKind = "read"
	EventRelease EventKind = "release"
	EventFault   EventKind = "fault"
)

// Event describes one completed operation.
type Event struct {
	Kind     EventKind
	Device   string
	HandleID string
	// Count is the byte count reported to the caller (read/write) or the
	// open count (open).
	Count int
	// Stored is the message length after the operation.
	Stored int
	At     time.Time
	Err    error
}

// Observer receives endpoint events. It is called outside the endpoint
// lock and must not block.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Observers fans one event out to several observers.
type Observers []Observer

func (o Observers) Observe(ev Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(ev)
		}
	}
}
