// internal/events/payload.go
package events

import (
	"encoding/json"
	"time"

	"github.com/tamzrod/chardev/internal/device"
)

// Topics builds topic names under a prefix.
type Topics struct {
	Prefix string
	Device string
}

func (t Topics) Event(kind device.EventKind) string {
	return t.Prefix + "/" + t.Device + "/event/" + string(kind)
}

func (t Topics) Status() string {
	return t.Prefix + "/" + t.Device + "/status"
}

type eventPayload struct {
	Device    string `json:"device"`
	Kind      string `json:"kind"`
	Handle    string `json:"handle,omitempty"`
	Count     int    `json:"count"`
	Stored    int    `json:"stored"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func encodeEvent(ev device.Event) ([]byte, error) {
	p := eventPayload{
		Device:    ev.Device,
		Kind:      string(ev.Kind),
		Handle:    ev.HandleID,
		Count:     ev.Count,
		Stored:    ev.Stored,
		Timestamp: ev.At.UTC().Format(time.RFC3339Nano),
	}
	if ev.Err != nil {
		p.Error = ev.Err.Error()
	}
	return json.Marshal(p)
}

type statusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func encodeStatus(status, clientID, reason string) string {
	b, _ := json.Marshal(statusPayload{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return string(b)
}
