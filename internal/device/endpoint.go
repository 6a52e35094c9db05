// internal/device/endpoint.go
package device

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// DefaultCapacity is the buffer capacity including the terminator.
const DefaultCapacity = 256

// MaxCapacity bounds the buffer so a stored length always fits one
// 16-bit status slot.
const MaxCapacity = 1 << 16

// Options configures an Endpoint.
type Options struct {
	Name     string
	Capacity int
	Reversal Reversal
	Logger   zerolog.Logger
	Observer Observer
}

// Endpoint is the single shared message buffer behind a device node.
type Endpoint struct {
	name     string
	reversal Reversal
	log      zerolog.Logger
	obs      Observer

	mu        sync.Mutex
	buffer    []byte
	length    int
	openCount uint64

	live         atomic.Int64
	reads        atomic.Uint64
	writes       atomic.Uint64
	faults       atomic.Uint64
	lastActivity atomic.Int64 // unix nanos
}

// New creates a zero-initialized endpoint.
func New(opts Options) (*Endpoint, error) {
	if opts.Name == "" {
		return nil, errors.New("device: name required")
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Capacity < 2 || opts.Capacity > MaxCapacity {
		return nil, fmt.Errorf("device: capacity %d out of range 2-%d", opts.Capacity, MaxCapacity)
	}
	if opts.Reversal != ReversalToggle && opts.Reversal != ReversalStable {
		return nil, fmt.Errorf("device: invalid reversal %v", opts.Reversal)
	}
	return &Endpoint{
		name:     opts.Name,
		reversal: opts.Reversal,
		log:      opts.Logger.With().Str("device", opts.Name).Logger(),
		obs:      opts.Observer,
		buffer:   make([]byte, opts.Capacity),
	}, nil
}

// Name returns the device name.
func (e *Endpoint) Name() string { return e.name }

// Capacity returns the buffer capacity including the terminator.
func (e *Endpoint) Capacity() int { return len(e.buffer) }

// Open creates a handle in the pending state. It never fails and does not
// touch the buffer.
func (e *Endpoint) Open() *Handle {
	h := &Handle{id: uuid.NewString(), ep: e, session: SessionPending}

	e.mu.Lock()
	e.openCount++
	opens := e.openCount
	stored := e.length
	e.mu.Unlock()

	e.live.Inc()
	e.touch()
	e.log.Info().Str("handle", h.id).Uint64("opens", opens).Msg("device opened")
	e.notify(Event{Kind: EventOpen, HandleID: h.id, Count: int(opens), Stored: stored})
	return h
}

// Write replaces the stored message with the first min(len, Capacity-1)
// bytes of src, cut at the first NUL byte. The returned count is the
// caller's untruncated request length.
func (e *Endpoint) Write(h *Handle, src Source) (int, error) {
	requested := src.Len()
	n := requested
	if n > len(e.buffer)-1 {
		n = len(e.buffer) - 1
	}

	e.mu.Lock()
	closed := h.session == SessionClosed
	e.mu.Unlock()
	if closed {
		return 0, ErrHandleClosed
	}

	// Stage first so a fault leaves the buffer untouched.
	staged := make([]byte, n)
	if err := src.CopyIn(staged); err != nil {
		return 0, e.fault(h, "write", n, err)
	}

	e.mu.Lock()
	if h.session == SessionClosed {
		e.mu.Unlock()
		return 0, ErrHandleClosed
	}
	copy(e.buffer, staged)
	e.buffer[n] = 0
	e.length = terminated(e.buffer[:n+1])
	stored := e.length
	e.mu.Unlock()

	e.writes.Inc()
	e.touch()
	e.log.Debug().Str("handle", h.id).Int("requested", requested).Int("stored", stored).Msg("message received")
	e.notify(Event{Kind: EventWrite, HandleID: h.id, Count: requested, Stored: stored})
	return requested, nil
}

// WriteBytes is Write over a plain slice.
func (e *Endpoint) WriteBytes(h *Handle, p []byte) (int, error) {
	return e.Write(h, Bytes(p))
}

// Read delivers the whole stored message reversed if the handle's session is
// pending and returns 0 bytes once it is drained. requestedLen is not used to
// limit delivery; dst must hold the whole message or the read faults and the
// session stays pending.
func (e *Endpoint) Read(h *Handle, dst Sink, requestedLen int) (int, error) {
	e.mu.Lock()
	switch h.session {
	case SessionClosed:
		e.mu.Unlock()
		return 0, ErrHandleClosed
	case SessionDrained:
		e.mu.Unlock()
		e.log.Debug().Str("handle", h.id).Int("requested", requestedLen).Msg("read at end of message")
		return 0, nil
	}

	out := make([]byte, e.length)
	copy(out, e.buffer[:e.length])
	reverse(out)

	if err := dst.CopyOut(out); err != nil {
		e.mu.Unlock()
		return 0, e.fault(h, "read", len(out), err)
	}

	if e.reversal == ReversalToggle {
		copy(e.buffer, out)
	}
	h.session = SessionDrained
	n := e.length
	e.mu.Unlock()

	e.reads.Inc()
	e.touch()
	e.log.Info().Str("handle", h.id).Int("count", n).Msg("message sent")
	e.notify(Event{Kind: EventRead, HandleID: h.id, Count: n, Stored: n})
	return n, nil
}

// ReadBytes is Read into a plain slice.
func (e *Endpoint) ReadBytes(h *Handle, p []byte) (int, error) {
	return e.Read(h, Bytes(p), len(p))
}

// Release closes the handle. Releasing twice is a no-op.
func (e *Endpoint) Release(h *Handle) {
	e.mu.Lock()
	if h.session == SessionClosed {
		e.mu.Unlock()
		return
	}
	h.session = SessionClosed
	stored := e.length
	e.mu.Unlock()

	e.live.Dec()
	e.touch()
	e.log.Info().Str("handle", h.id).Msg("device closed")
	e.notify(Event{Kind: EventRelease, HandleID: h.id, Stored: stored})
}

// Contents returns a copy of the stored message in its current order.
func (e *Endpoint) Contents() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]byte, e.length)
	copy(out, e.buffer[:e.length])
	return out
}

func (e *Endpoint) fault(h *Handle, op string, n int, cause error) error {
	e.faults.Inc()
	e.touch()
	e.log.Error().Err(cause).Str("handle", h.id).Str("op", op).Int("count", n).Msg("copy fault")
	err := fmt.Errorf("device: %s %d bytes: %w", op, n, ErrCopyFault)
	e.notify(Event{Kind: EventFault, HandleID: h.id, Count: n, Err: err})
	return err
}

func (e *Endpoint) touch() {
	e.lastActivity.Store(time.Now().UnixNano())
}

func (e *Endpoint) notify(ev Event) {
	if e.obs == nil {
		return
	}
	ev.Device = e.name
	ev.At = time.Now()
	e.obs.Observe(ev)
}
