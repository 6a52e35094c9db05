// internal/config/normalize.go
package config

import "strings"

const (
	DefaultDeviceName      = "mi_char_device"
	DefaultClassName       = "mi"
	DefaultCapacity        = 256
	DefaultFirstMajor      = 240
	DefaultListen          = ":8740"
	DefaultMaxMessageSize  = 1 << 20
	DefaultIntervalMs      = 1000
	DefaultTimeoutMs       = 2000
	DefaultEventsPrefix    = "chardev"
	DefaultDiscoveryDomain = "local."
)

// Normalize applies defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Device
	if d.Name == "" {
		d.Name = DefaultDeviceName
	}
	if d.Class == "" {
		d.Class = DefaultClassName
	}
	if d.Capacity == 0 {
		d.Capacity = DefaultCapacity
	}
	if d.Reversal == "" {
		d.Reversal = "toggle"
	}
	d.Reversal = strings.ToLower(d.Reversal)

	if cfg.Host.FirstMajor == 0 {
		cfg.Host.FirstMajor = DefaultFirstMajor
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DefaultListen
	}
	if cfg.Server.MaxMessageSize == 0 {
		cfg.Server.MaxMessageSize = DefaultMaxMessageSize
	}

	if cfg.Discovery.Instance == "" {
		cfg.Discovery.Instance = d.Name
	}
	if cfg.Discovery.Domain == "" {
		cfg.Discovery.Domain = DefaultDiscoveryDomain
	}

	// ------------------------------------------------------------
	// STATUS MIRROR (OPT-IN)
	// ------------------------------------------------------------
	s := &cfg.Status
	if s.Transport == "" {
		s.Transport = "modbus"
	}
	if s.IntervalMs == 0 {
		s.IntervalMs = DefaultIntervalMs
	}
	if s.TimeoutMs == 0 {
		s.TimeoutMs = DefaultTimeoutMs
	}
	if s.DeviceName == "" {
		s.DeviceName = d.Name
	}
	// ASCII already validated; status block holds 16 characters.
	if len(s.DeviceName) > 16 {
		s.DeviceName = s.DeviceName[:16]
	}

	e := &cfg.Events
	if e.Prefix == "" {
		e.Prefix = DefaultEventsPrefix
	}
	if e.ClientID == "" {
		e.ClientID = "chardevd-" + d.Name
	}

	l := &cfg.Logging
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
	if l.Output == "" {
		l.Output = "stdout"
	}
}
