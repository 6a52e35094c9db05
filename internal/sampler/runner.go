// internal/sampler/runner.go
package sampler

import (
	"context"
	"time"
)

// Run starts the ticker loop and emits a Sample on the provided channel.
// One goroutine per device. No overlap.
func (s *Sampler) Run(ctx context.Context, out chan<- Sample) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case out <- s.SampleOnce():
			case <-ctx.Done():
				return
			}
		}
	}
}
