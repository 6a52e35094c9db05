// internal/status/encode.go
package status

// Slots returns the live slots 0..LiveSlots-1 in slot order.
func (s Snapshot) Slots() [LiveSlots]uint16 {
	var regs [LiveSlots]uint16
	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotOpens] = s.Opens
	regs[SlotLive] = s.Live
	regs[SlotLength] = s.Length
	regs[SlotReads] = s.Reads
	regs[SlotWrites] = s.Writes
	regs[SlotFaults] = s.Faults
	return regs
}

// Encode converts a Snapshot into a full device status block.
// Layout is protocol-locked. The device name slots are left zero.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)
	live := s.Slots()
	copy(regs, live[:])
	return regs
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
