// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health        uint16
	LastErrorCode uint16
	Opens         uint16
	Live          uint16
	Length        uint16
	Reads         uint16
	Writes        uint16
	Faults        uint16
}

// Saturate clamps a counter to the 16-bit slot range.
func Saturate[T ~int | ~int64 | ~uint64](v T) uint16 {
	if v < 0 {
		return 0
	}
	if uint64(v) > CounterMax {
		return CounterMax
	}
	return uint16(v)
}
