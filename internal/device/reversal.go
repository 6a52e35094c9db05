// internal/device/reversal.go
package device

import (
	"fmt"
	"strings"
)

// Reversal selects what a Read does to the stored message.
type Reversal int

const (
	// ReversalToggle reverses the stored message in place on every
	// delivering read, so a rewound handle sees the original order again.
	ReversalToggle Reversal = iota

	// ReversalStable reverses into the output only. Stored content changes
	// on Write alone.
	ReversalStable
)

func (r Reversal) String() string {
	switch r {
	case ReversalToggle:
		return "toggle"
	case ReversalStable:
		return "stable"
	default:
		return fmt.Sprintf("reversal(%d)", int(r))
	}
}

// ParseReversal maps a config value to a Reversal. Empty means toggle.
func ParseReversal(s string) (Reversal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "toggle":
		return ReversalToggle, nil
	case "stable":
		return ReversalStable, nil
	default:
		return 0, fmt.Errorf("device: unknown reversal mode %q", s)
	}
}

// reverse swaps b in place from both ends toward the middle.
func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// terminated returns the length of b up to its first NUL byte.
func terminated(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return len(b)
}
