// internal/config/validate.go
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/tamzrod/chardev/internal/device"
)

// Validate checks configuration correctness.
// It performs declarative validation only. Zero values mean "default".
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	d := cfg.Device
	if err := validateNodeName("device.name", d.Name); err != nil {
		return err
	}
	if err := validateNodeName("device.class", d.Class); err != nil {
		return err
	}
	if d.Capacity != 0 && (d.Capacity < 2 || d.Capacity > device.MaxCapacity) {
		return fmt.Errorf("device.capacity must be in 2-%d, got %d", device.MaxCapacity, d.Capacity)
	}
	switch strings.ToLower(d.Reversal) {
	case "", "toggle", "stable":
	default:
		return fmt.Errorf("device.reversal must be toggle or stable, got %q", d.Reversal)
	}

	// ------------------------------------------------------------
	// HOST
	// ------------------------------------------------------------

	if cfg.Host.FirstMajor < 0 || cfg.Host.FirstMajor > 4095 {
		return fmt.Errorf("host.first_major %d out of range 0-4095", cfg.Host.FirstMajor)
	}

	// ------------------------------------------------------------
	// SERVER
	// ------------------------------------------------------------

	if cfg.Server.Listen != "" {
		if err := validateListen(cfg.Server.Listen); err != nil {
			return err
		}
	}
	if cfg.Server.MaxMessageSize < 0 {
		return fmt.Errorf("server.max_message_size must be >= 0")
	}

	// ------------------------------------------------------------
	// STATUS MIRROR (OPT-IN)
	// ------------------------------------------------------------

	s := cfg.Status
	for i := 0; i < len(s.DeviceName); i++ {
		if s.DeviceName[i] > 0x7F {
			return fmt.Errorf("status.device_name must contain ASCII characters only")
		}
	}
	if s.Enabled {
		switch s.Transport {
		case "", "modbus", "ingest":
		default:
			return fmt.Errorf("status.transport must be modbus or ingest, got %q", s.Transport)
		}
		if s.Endpoint == "" {
			return fmt.Errorf("status.enabled is set but status.endpoint is empty")
		}
		if s.IntervalMs < 0 || s.TimeoutMs < 0 || s.StaleAfterMs < 0 {
			return fmt.Errorf("status.interval_ms, status.timeout_ms and status.stale_after_ms must be >= 0")
		}
	}

	// ------------------------------------------------------------
	// EVENTS (OPT-IN)
	// ------------------------------------------------------------

	e := cfg.Events
	if e.Enabled {
		if e.Broker == "" {
			return fmt.Errorf("events.enabled is set but events.broker is empty")
		}
		if e.QoS < 0 || e.QoS > 2 {
			return fmt.Errorf("events.qos must be 0, 1 or 2, got %d", e.QoS)
		}
		if strings.ContainsAny(e.Prefix, "+#") {
			return fmt.Errorf("events.prefix must not contain MQTT wildcards")
		}
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}
	switch strings.ToLower(cfg.Logging.Output) {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("logging.output must be stdout or stderr, got %q", cfg.Logging.Output)
	}

	return nil
}

// validateNodeName accepts empty (default) or a /dev-safe name.
func validateNodeName(field, name string) error {
	if name == "" {
		return nil
	}
	if len(name) > 64 {
		return fmt.Errorf("%s too long (%d > 64)", field, len(name))
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		ok := c == '_' || c == '-' || c == '.' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			return fmt.Errorf("%s %q contains invalid character %q", field, name, c)
		}
	}
	return nil
}

func validateListen(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("server.listen %q: %w", addr, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("server.listen %q: invalid port", addr)
	}
	return nil
}
