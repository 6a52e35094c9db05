// internal/device/stats.go
package device

import "time"

// Stats is a point-in-time view of an endpoint.
type Stats struct {
	Name         string    `json:"name"`
	Capacity     int       `json:"capacity"`
	Reversal     string    `json:"reversal"`
	Opens        uint64    `json:"opens"`
	Live         int64     `json:"live"`
	Length       int       `json:"length"`
	Reads        uint64    `json:"reads"`
	Writes       uint64    `json:"writes"`
	Faults       uint64    `json:"faults"`
	LastActivity time.Time `json:"last_activity"`
}

// Stats returns the current counters and message length.
func (e *Endpoint) Stats() Stats {
	e.mu.Lock()
	opens := e.openCount
	length := e.length
	e.mu.Unlock()

	var last time.Time
	if ns := e.lastActivity.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}

	return Stats{
		Name:         e.name,
		Capacity:     len(e.buffer),
		Reversal:     e.reversal.String(),
		Opens:        opens,
		Live:         e.live.Load(),
		Length:       length,
		Reads:        e.reads.Load(),
		Writes:       e.writes.Load(),
		Faults:       e.faults.Load(),
		LastActivity: last,
	}
}
