// internal/status/encode_test.go
package status

import "testing"

func TestEncode_SlotPlacement(t *testing.T) {
	s := Snapshot{
		Health:        HealthOK,
		LastErrorCode: 14,
		Opens:         3,
		Live:          1,
		Length:        4,
		Reads:         5,
		Writes:        6,
		Faults:        7,
	}

	regs := Encode(s)
	if len(regs) != SlotsPerDevice {
		t.Fatalf("len=%d want %d", len(regs), SlotsPerDevice)
	}

	want := map[int]uint16{
		SlotHealthCode:    HealthOK,
		SlotLastErrorCode: 14,
		SlotOpens:         3,
		SlotLive:          1,
		SlotLength:        4,
		SlotReads:         5,
		SlotWrites:        6,
		SlotFaults:        7,
	}
	for slot, v := range want {
		if regs[slot] != v {
			t.Fatalf("slot %d=%d want %d", slot, regs[slot], v)
		}
	}
	for slot := SlotReservedStart; slot < SlotsPerDevice; slot++ {
		if regs[slot] != 0 {
			t.Fatalf("slot %d should be zero, got %d", slot, regs[slot])
		}
	}
}

func TestEncodeDeviceName(t *testing.T) {
	regs := EncodeDeviceName("mi_char_device_extra")
	if len(regs) != SlotDeviceNameSlots {
		t.Fatalf("len=%d", len(regs))
	}
	if regs[0] != uint16('m')<<8|uint16('i') {
		t.Fatalf("regs[0]=%#04x", regs[0])
	}
	// 16 chars max: "mi_char_device_e" -> last register "_e"
	if regs[7] != uint16('_')<<8|uint16('e') {
		t.Fatalf("regs[7]=%#04x", regs[7])
	}

	odd := EncodeDeviceName("abc\x01")
	if odd[1] != uint16('c')<<8|uint16('?') {
		t.Fatalf("control char not sanitized: %#04x", odd[1])
	}
}

func TestSaturate(t *testing.T) {
	if Saturate(uint64(70000)) != CounterMax {
		t.Fatalf("expected saturation")
	}
	if Saturate(int64(-1)) != 0 {
		t.Fatalf("expected clamp to zero")
	}
	if Saturate(42) != 42 {
		t.Fatalf("expected passthrough")
	}
}
