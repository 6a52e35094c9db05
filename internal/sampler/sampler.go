// internal/sampler/sampler.go
package sampler

import (
	"errors"
	"time"

	"github.com/tamzrod/chardev/internal/device"
	"github.com/tamzrod/chardev/internal/status"
)

// Source abstracts the endpoint counters the sampler needs.
type Source interface {
	Stats() device.Stats
}

// Config is the minimal runtime config the sampler needs.
// StaleAfter reports STALE once the endpoint has been idle that long;
// zero disables it.
type Config struct {
	Device     string
	Interval   time.Duration
	StaleAfter time.Duration
}

// Sampler is a dumb, clock-driven reader of endpoint stats.
type Sampler struct {
	cfg Config
	src Source
	now func() time.Time

	lastFaults uint64
	lastCode   uint16
}

// New creates a sampler with immutable config.
func New(cfg Config, src Source) (*Sampler, error) {
	if cfg.Device == "" {
		return nil, errors.New("sampler: device name required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("sampler: interval must be > 0")
	}
	if src == nil {
		return nil, errors.New("sampler: source required")
	}
	if cfg.StaleAfter < 0 {
		return nil, errors.New("sampler: stale_after must be >= 0")
	}
	return &Sampler{cfg: cfg, src: src, now: time.Now}, nil
}

// SampleOnce performs exactly one sample.
// Health is ERROR when copy faults happened since the previous sample,
// otherwise STALE when the endpoint has been idle for StaleAfter.
func (s *Sampler) SampleOnce() Sample {
	st := s.src.Stats()
	now := s.now()

	snap := status.Snapshot{
		Health:        status.HealthOK,
		LastErrorCode: 0,
		Opens:         uint16(st.Opens), // low 16 bits by layout
		Live:          status.Saturate(st.Live),
		Length:        status.Saturate(st.Length),
		Reads:         status.Saturate(st.Reads),
		Writes:        status.Saturate(st.Writes),
		Faults:        status.Saturate(st.Faults),
	}

	if st.Faults > s.lastFaults {
		snap.Health = status.HealthError
		s.lastCode = device.EFAULT
	}
	if snap.Health == status.HealthError {
		snap.LastErrorCode = s.lastCode
	} else if s.cfg.StaleAfter > 0 && !st.LastActivity.IsZero() && now.Sub(st.LastActivity) >= s.cfg.StaleAfter {
		snap.Health = status.HealthStale
	}
	s.lastFaults = st.Faults

	return Sample{
		Device:   s.cfg.Device,
		At:       now,
		Snapshot: snap,
	}
}
