// internal/sampler/types.go
package sampler

import (
	"time"

	"github.com/tamzrod/chardev/internal/status"
)

// Sample is a snapshot produced by one sample cycle.
type Sample struct {
	Device   string
	At       time.Time
	Snapshot status.Snapshot
}
