// internal/host/hello.go
package host

import "github.com/rs/zerolog"

// Hello is the minimal module: it only logs on load and unload.
type Hello struct {
	log zerolog.Logger
}

func NewHello(log zerolog.Logger) *Hello {
	return &Hello{log: log.With().Str("module", "hello").Logger()}
}

func (h *Hello) Name() string { return "hello" }

func (h *Hello) Init() error {
	h.log.Info().Msg("driver registered")
	return nil
}

func (h *Hello) Exit() {
	h.log.Info().Msg("driver unregistered")
}
