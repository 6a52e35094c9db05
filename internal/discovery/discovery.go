// internal/discovery/discovery.go
package discovery

import (
	"fmt"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog"
)

// ServiceType is the mDNS service advertised for device nodes.
const ServiceType = "_chardev._tcp"

// Service describes one advertised node.
type Service struct {
	Instance string
	Domain   string
	Port     int
	Node     string
	Version  string
}

// TXT returns the text records published with the service.
func (s Service) TXT() []string {
	txt := []string{
		"protocol=websocket",
		"path=/dev/" + s.Node,
		"node=" + s.Node,
	}
	if s.Version != "" {
		txt = append(txt, "version="+s.Version)
	}
	return txt
}

type registerFunc func(instance, service, domain string, port int, txt []string) (shutdowner, error)

type shutdowner interface{ Shutdown() }

func zeroconfRegister(instance, service, domain string, port int, txt []string) (shutdowner, error) {
	return zeroconf.Register(instance, service, domain, port, txt, nil)
}

// Advertiser publishes a Service over mDNS until Shutdown.
type Advertiser struct {
	log      zerolog.Logger
	register registerFunc

	mu     sync.Mutex
	server shutdowner
}

func NewAdvertiser(log zerolog.Logger) *Advertiser {
	return &Advertiser{log: log, register: zeroconfRegister}
}

// Start registers svc. Calling Start again replaces the previous record.
func (a *Advertiser) Start(svc Service) error {
	if svc.Instance == "" || svc.Port <= 0 {
		return fmt.Errorf("discovery: instance and port required")
	}

	srv, err := a.register(svc.Instance, ServiceType, svc.Domain, svc.Port, svc.TXT())
	if err != nil {
		return fmt.Errorf("discovery: register %s: %w", svc.Instance, err)
	}

	a.mu.Lock()
	prev := a.server
	a.server = srv
	a.mu.Unlock()
	if prev != nil {
		prev.Shutdown()
	}

	a.log.Info().Str("instance", svc.Instance).Int("port", svc.Port).Str("node", svc.Node).Msg("mDNS service registered")
	return nil
}

// Shutdown withdraws the record. Safe to call when not started.
func (a *Advertiser) Shutdown() {
	a.mu.Lock()
	srv := a.server
	a.server = nil
	a.mu.Unlock()

	if srv != nil {
		srv.Shutdown()
		a.log.Info().Msg("mDNS service stopped")
	}
}
