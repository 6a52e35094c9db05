// internal/device/handle.go
package device

import "io"

// Session is the per-handle read session state.
type Session int

const (
	// SessionPending means the next Read delivers the message.
	SessionPending Session = iota
	// SessionDrained means the message was delivered; reads return 0 bytes.
	SessionDrained
	// SessionClosed means the handle was released.
	SessionClosed
)

func (s Session) String() string {
	switch s {
	case SessionPending:
		return "pending"
	case SessionDrained:
		return "drained"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handle is one client's open reference to an Endpoint.
// Session state is guarded by the endpoint mutex.
type Handle struct {
	id      string
	ep      *Endpoint
	session Session
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() string { return h.id }

// Session returns the current read session state.
func (h *Handle) Session() Session {
	h.ep.mu.Lock()
	defer h.ep.mu.Unlock()
	return h.session
}

// Rewind resets a drained session to pending, the equivalent of seeking
// the file offset back to 0. It is a no-op on a closed handle.
func (h *Handle) Rewind() {
	h.ep.mu.Lock()
	defer h.ep.mu.Unlock()
	if h.session == SessionDrained {
		h.session = SessionPending
	}
}

// Read implements io.Reader. A zero-length delivery is reported as io.EOF.
// p must be able to hold the whole message, otherwise ErrCopyFault.
func (h *Handle) Read(p []byte) (int, error) {
	n, err := h.ep.Read(h, Bytes(p), len(p))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write implements io.Writer with the endpoint's accepted-count semantics.
func (h *Handle) Write(p []byte) (int, error) {
	return h.ep.Write(h, Bytes(p))
}

// Close releases the handle.
func (h *Handle) Close() error {
	h.ep.Release(h)
	return nil
}

var _ io.ReadWriteCloser = (*Handle)(nil)
