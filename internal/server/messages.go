// internal/server/messages.go
package server

import "encoding/json"

// Request types.
const (
	TypeWrite  = "write"
	TypeRead   = "read"
	TypeRewind = "rewind"

	// TypeError answers a frame that could not be decoded as a Request.
	TypeError = "error"
)

// Request is one client operation.
type Request struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WritePayload carries the bytes to write. Text is used when Data is empty.
type WritePayload struct {
	Data []byte `json:"data,omitempty"`
	Text string `json:"text,omitempty"`
}

// ReadPayload sizes the receive buffer. Zero means the node capacity.
// A message longer than Len is a copy fault, never a partial read.
type ReadPayload struct {
	Len int `json:"len"`
}

type WriteResult struct {
	Count int `json:"count"`
}

type ReadResult struct {
	Data  []byte `json:"data"`
	Count int    `json:"count"`
	EOF   bool   `json:"eof"`
}

func responseType(reqType string) string { return reqType + "Response" }
