// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tamzrod/chardev/internal/device"
	"github.com/tamzrod/chardev/internal/host"
)

// Resolver maps node names to their operations.
type Resolver interface {
	Lookup(name string) (host.FileOperations, bool)
	Nodes() []string
}

type Config struct {
	Listen         string
	APISecret      string
	MaxMessageSize int64
}

// Server manages the HTTP and WebSocket listener.
type Server struct {
	cfg      Config
	nodes    Resolver
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu         sync.Mutex
	httpServer *http.Server
	addr       string
	conns      map[*websocket.Conn]struct{}
}

func New(cfg Config, nodes Resolver, log zerolog.Logger) *Server {
	return &Server{
		cfg:   cfg,
		nodes: nodes,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/nodes", s.handleNodes)
	r.Get("/stats/{node}", s.handleStats)
	r.Get("/dev/{node}", s.handleDevice)
	return r
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Listen, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("server stopped")
		}
	}()
	s.log.Info().Str("addr", s.addr).Msg("server listening")
	return nil
}

// Addr returns the bound listen address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Port returns the bound TCP port, or 0 before Start.
func (s *Server) Port() int {
	_, p, err := net.SplitHostPort(s.Addr())
	if err != nil {
		return 0
	}
	port, _ := strconv.Atoi(p)
	return port
}

// Shutdown stops the listener and closes every open connection, which
// releases their handles.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok\n")
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.nodes.Nodes())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	fops, ok := s.nodes.Lookup(chi.URLParam(r, "node"))
	if !ok {
		http.Error(w, "no such device", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, fops.Stats())
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "node")
	fops, ok := s.nodes.Lookup(name)
	if !ok {
		http.Error(w, "no such device", http.StatusNotFound)
		return
	}

	if s.cfg.APISecret != "" && r.URL.Query().Get("secret") != s.cfg.APISecret {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("connection rejected: invalid API secret")
		http.Error(w, "Unauthorized: Invalid API secret", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.track(conn, true)
	defer s.track(conn, false)
	defer conn.Close()

	h := fops.Open()
	defer h.Close()

	log := s.log.With().Str("node", name).Str("handle", h.ID()).Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("client connected")

	for {
		req, err := s.readRequest(conn)
		var resp Response
		switch {
		case errors.Is(err, errMessageTooLarge), errors.Is(err, errMalformed):
			log.Warn().Err(err).Msg("request rejected")
			resp = Response{ID: req.ID, Type: TypeError, Error: err.Error()}
		case err != nil:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("client read failed")
			}
			return
		default:
			resp = s.dispatch(fops, h, req)
		}

		if err := conn.WriteJSON(resp); err != nil {
			log.Debug().Err(err).Msg("client write failed")
			return
		}
	}
}

func (s *Server) dispatch(fops host.FileOperations, h *device.Handle, req Request) Response {
	resp := Response{ID: req.ID, Type: responseType(req.Type)}

	switch req.Type {
	case TypeWrite:
		var p WritePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			resp.Error = err.Error()
			return resp
		}
		data := p.Data
		if len(data) == 0 && p.Text != "" {
			data = []byte(p.Text)
		}
		n, err := h.Write(data)
		if err != nil {
			resp.Error = errorText(err)
			return resp
		}
		resp.Success = true
		resp.Payload = WriteResult{Count: n}

	case TypeRead:
		var p ReadPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			resp.Error = err.Error()
			return resp
		}
		// len sizes the receive buffer like a caller's read(2) buffer; a
		// message longer than it faults.
		size := fops.Capacity()
		if p.Len > 0 && p.Len < size {
			size = p.Len
		}
		buf := make([]byte, size)
		n, err := h.Read(buf)
		switch {
		case errors.Is(err, io.EOF):
			resp.Success = true
			resp.Payload = ReadResult{Data: []byte{}, EOF: true}
		case err != nil:
			resp.Error = errorText(err)
		default:
			resp.Success = true
			resp.Payload = ReadResult{Data: buf[:n], Count: n}
		}

	case TypeRewind:
		h.Rewind()
		resp.Success = true

	default:
		resp.Error = fmt.Sprintf("unknown request type %q", req.Type)
	}

	return resp
}

var (
	errMessageTooLarge = errors.New("message too large")
	errMalformed       = errors.New("malformed request")
)

// readRequest reads one frame. A frame over MaxMessageSize is discarded
// and reported as errMessageTooLarge; the connection stays usable.
func (s *Server) readRequest(conn *websocket.Conn) (Request, error) {
	var req Request

	_, frame, err := conn.NextReader()
	if err != nil {
		return req, err
	}

	r := frame
	if s.cfg.MaxMessageSize > 0 {
		r = io.LimitReader(frame, s.cfg.MaxMessageSize+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return req, err
	}
	if s.cfg.MaxMessageSize > 0 && int64(len(raw)) > s.cfg.MaxMessageSize {
		if _, err := io.Copy(io.Discard, frame); err != nil {
			return req, err
		}
		return req, fmt.Errorf("%w: limit %d bytes", errMessageTooLarge, s.cfg.MaxMessageSize)
	}

	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("%w: %v", errMalformed, err)
	}
	return req, nil
}

func (s *Server) track(c *websocket.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// errorText maps endpoint errors to stable client-facing strings.
func errorText(err error) string {
	switch {
	case errors.Is(err, device.ErrCopyFault):
		return "copy fault"
	case errors.Is(err, device.ErrHandleClosed):
		return "handle closed"
	default:
		return err.Error()
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
