// cmd/chardevd/mirror.go
package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tamzrod/chardev/internal/sampler"
	"github.com/tamzrod/chardev/internal/status"
	"github.com/tamzrod/chardev/internal/writer"
)

// runMirror owns the published snapshot. It asserts the block once on
// start and afterwards writes only when a sample differs from the last
// delivered one. A failed write is retried on the next sample. On
// shutdown the block is marked DISABLED with the last known counters.
func runMirror(ctx context.Context, in <-chan sampler.Sample, sw writer.StatusWriter, log zerolog.Logger) {
	var snap status.Snapshot
	snap.Health = status.HealthUnknown

	delivered := true
	if err := sw.WriteStatus(snap); err != nil {
		log.Warn().Err(err).Msg("status write failed on start")
		delivered = false
	}

	for {
		select {
		case <-ctx.Done():
			snap.Health = status.HealthDisabled
			snap.LastErrorCode = 0
			if err := sw.WriteStatus(snap); err != nil {
				log.Warn().Err(err).Msg("status write failed on shutdown")
			}
			return

		case s, ok := <-in:
			if !ok {
				return
			}
			if delivered && s.Snapshot == snap {
				continue
			}
			if s.Snapshot.Health == status.HealthError && snap.Health != status.HealthError {
				log.Warn().Str("device", s.Device).Uint16("code", s.Snapshot.LastErrorCode).Msg("device reported faults")
			}

			snap = s.Snapshot
			if err := sw.WriteStatus(snap); err != nil {
				log.Warn().Err(err).Str("device", s.Device).Msg("status write failed")
				delivered = false
				continue
			}
			delivered = true
		}
	}
}
