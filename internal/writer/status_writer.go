// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/chardev/internal/status"
)

// deviceStatusWriter is the concrete implementation used by the mirror.
type deviceStatusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

const statusAreaHoldingRegisters byte = 3

var slotNames = [status.LiveSlots]string{
	"health", "last_error", "opens", "live", "length", "reads", "writes", "faults",
}

// NewDeviceStatusWriter builds a status writer for one device block.
func NewDeviceStatusWriter(plan StatusPlan, cli endpointClient) (*deviceStatusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last:     status.Snapshot{Health: status.HealthUnknown},
		nameRegs: status.EncodeDeviceName(plan.DeviceName),
	}, nil
}

// WriteStatus delivers a device status snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil {
		return errors.New("status writer: disabled")
	}

	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := sw.fullBlockRegs(s)

		if err := sw.cli.WriteRegisters(
			statusAreaHoldingRegisters,
			sw.plan.UnitID,
			baseAddr,
			regs,
		); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: changed live slots only
	// ------------------------------------------------------------
	var errs []string

	prev := sw.last.Slots()
	next := s.Slots()

	for slot := 0; slot < status.LiveSlots; slot++ {
		if prev[slot] == next[slot] {
			continue
		}
		if err := sw.cli.WriteRegisters(
			statusAreaHoldingRegisters,
			sw.plan.UnitID,
			baseAddr+uint16(slot),
			[]uint16{next[slot]},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", slot, slotNames[slot], err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

func (sw *deviceStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)

	// Device name always lives at the end of the block
	for i := 0; i < status.SlotDeviceNameSlots && i < len(sw.nameRegs); i++ {
		regs[status.SlotDeviceNameStart+i] = sw.nameRegs[i]
	}

	return regs
}
