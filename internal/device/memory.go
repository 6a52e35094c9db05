// internal/device/memory.go
package device

// Source is caller memory that a Write copies from.
type Source interface {
	// Len is the number of bytes the caller asked to write.
	Len() int
	// CopyIn fills dst from the first len(dst) bytes of caller memory.
	CopyIn(dst []byte) error
}

// Sink is caller memory that a Read copies into.
type Sink interface {
	CopyOut(src []byte) error
}

// Bytes adapts a plain slice to both Source and Sink.
// As a Sink it faults when the slice cannot hold the whole message.
type Bytes []byte

func (b Bytes) Len() int { return len(b) }

func (b Bytes) CopyIn(dst []byte) error {
	if len(dst) > len(b) {
		return ErrCopyFault
	}
	copy(dst, b)
	return nil
}

func (b Bytes) CopyOut(src []byte) error {
	if len(src) > len(b) {
		return ErrCopyFault
	}
	copy(b, src)
	return nil
}
