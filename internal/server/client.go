// internal/server/client.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrRemote is returned when the server answers with success=false.
var ErrRemote = errors.New("server: request failed")

// Client is one open handle on a remote node. It is safe for concurrent
// use; requests are serialized.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
	seq  uint64
}

// Dial opens a handle on node at base (e.g. ws://host:8740).
func Dial(ctx context.Context, base, node, secret string) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("client: parse %q: %w", base, err)
	}
	u.Path = "/dev/" + node
	if secret != "" {
		q := u.Query()
		q.Set("secret", secret)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", u.Redacted(), err)
	}
	return &Client{conn: conn}, nil
}

// Write stores p on the device and returns the reported count.
func (c *Client) Write(p []byte) (int, error) {
	var res WriteResult
	if err := c.call(TypeWrite, WritePayload{Data: p}, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// Read performs one device read. eof is true on a drained handle.
func (c *Client) Read(n int) (data []byte, eof bool, err error) {
	var res ReadResult
	if err := c.call(TypeRead, ReadPayload{Len: n}, &res); err != nil {
		return nil, false, err
	}
	return res.Data, res.EOF, nil
}

// Rewind resets the remote handle's read session.
func (c *Client) Rewind() error {
	return c.call(TypeRewind, nil, nil)
}

// Close releases the remote handle.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

func (c *Client) call(typ string, payload any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	id := strconv.FormatUint(c.seq, 10)

	req := struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Payload any    `json:"payload,omitempty"`
	}{ID: id, Type: typ, Payload: payload}

	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("client: send %s: %w", typ, err)
	}

	var resp struct {
		ID      string          `json:"id"`
		Type    string          `json:"type"`
		Success bool            `json:"success"`
		Payload json.RawMessage `json:"payload"`
		Error   string          `json:"error"`
	}
	if err := c.conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("client: receive %s: %w", typ, err)
	}
	if resp.Type == TypeError {
		return fmt.Errorf("%w: %s: %s", ErrRemote, typ, resp.Error)
	}
	if resp.ID != id {
		return fmt.Errorf("client: response id %q, want %q", resp.ID, id)
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s: %s", ErrRemote, typ, resp.Error)
	}
	if out != nil && len(resp.Payload) > 0 {
		if err := json.Unmarshal(resp.Payload, out); err != nil {
			return fmt.Errorf("client: decode %s: %w", typ, err)
		}
	}
	return nil
}
