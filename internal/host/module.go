// internal/host/module.go
package host

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Module is a loadable unit with an init and an exit routine.
type Module interface {
	Name() string
	Init() error
	Exit()
}

// Loader loads modules in order and unloads them in reverse.
type Loader struct {
	log zerolog.Logger

	mu     sync.Mutex
	loaded []Module
}

func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log}
}

// Load initializes each module in order. If one fails, the modules already
// loaded by this call are unloaded in reverse and the error is returned.
func (l *Loader) Load(mods ...Module) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := len(l.loaded)
	for _, m := range mods {
		if err := m.Init(); err != nil {
			l.log.Error().Err(err).Str("module", m.Name()).Msg("module load failed")
			for i := len(l.loaded) - 1; i >= start; i-- {
				l.exit(l.loaded[i])
			}
			l.loaded = l.loaded[:start]
			return fmt.Errorf("load %s: %w", m.Name(), err)
		}
		l.log.Info().Str("module", m.Name()).Msg("module loaded")
		l.loaded = append(l.loaded, m)
	}
	return nil
}

// Unload exits every loaded module in reverse load order.
func (l *Loader) Unload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.loaded) - 1; i >= 0; i-- {
		l.exit(l.loaded[i])
	}
	l.loaded = nil
}

// Loaded returns the names of loaded modules in load order.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.loaded))
	for i, m := range l.loaded {
		out[i] = m.Name()
	}
	return out
}

func (l *Loader) exit(m Module) {
	m.Exit()
	l.log.Info().Str("module", m.Name()).Msg("module unloaded")
}
