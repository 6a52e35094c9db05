// internal/status/constants.go
package status

// Device Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the device health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last errno-style error code.
const SlotLastErrorCode = 1

// SlotOpens holds the low 16 bits of the open counter.
const SlotOpens = 2

// SlotLive holds the number of handles currently open.
const SlotLive = 3

// SlotLength holds the stored message length.
const SlotLength = 4

// SlotReads, SlotWrites and SlotFaults hold saturating operation counters.
const (
	SlotReads  = 5
	SlotWrites = 6
	SlotFaults = 7
)

// LiveSlots is the number of slots rewritten on incremental updates.
const LiveSlots = 8

// ---- RESERVED RANGE ----

// Slots 8-10 and 19 are reserved for future use.
const SlotReservedStart = 8
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// CounterMax is where every counter slot saturates.
const CounterMax = 65535

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy device.
const HealthOK uint16 = 1

// HealthError represents a device that faulted since the previous sample.
const HealthError uint16 = 2

// HealthStale represents a device idle for longer than the configured
// stale window.
const HealthStale uint16 = 3

// HealthDisabled is written once when the daemon shuts down.
const HealthDisabled uint16 = 4
