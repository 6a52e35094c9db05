// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	cfg "github.com/tamzrod/chardev/internal/config"
	"github.com/tamzrod/chardev/internal/writer/ingest"
	wmodbus "github.com/tamzrod/chardev/internal/writer/modbus"
)

// BuildPlan converts the status config into a StatusPlan.
// Assumes config has already passed validation and normalization.
func BuildPlan(s cfg.StatusConfig) (StatusPlan, error) {
	if s.Endpoint == "" {
		return StatusPlan{}, errors.New("writer: status endpoint required")
	}
	return StatusPlan{
		Endpoint:   s.Endpoint,
		UnitID:     s.UnitID,
		BaseSlot:   s.Slot,
		DeviceName: s.DeviceName,
	}, nil
}

// Build creates the status writer and its transport client.
// The returned closer releases the client.
func Build(s cfg.StatusConfig) (StatusWriter, func() error, error) {
	plan, err := BuildPlan(s)
	if err != nil {
		return nil, nil, err
	}

	timeout := time.Duration(s.TimeoutMs) * time.Millisecond

	var (
		cli     endpointClient
		closeFn func() error
	)

	switch s.Transport {
	case "", "modbus":
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: s.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		cli, closeFn = c, c.Close
	case "ingest":
		c, err := ingest.NewEndpointClient(ingest.Config{
			Endpoint: s.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		cli, closeFn = c, c.Close
	default:
		return nil, nil, fmt.Errorf("writer: unknown status transport %q", s.Transport)
	}

	sw, err := NewDeviceStatusWriter(plan, cli)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return sw, closeFn, nil
}
