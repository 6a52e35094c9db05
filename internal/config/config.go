// internal/config/config.go
package config

type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Host      HostConfig      `yaml:"host"`
	Server    ServerConfig    `yaml:"server"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Status    StatusConfig    `yaml:"status"`
	Events    EventsConfig    `yaml:"events"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Name     string `yaml:"name"`
	Class    string `yaml:"class"`
	Capacity int    `yaml:"capacity"` // including terminator
	Reversal string `yaml:"reversal"` // toggle | stable
}

// ---- HOST ----

type HostConfig struct {
	// Hello loads the companion hello module before the device.
	Hello      bool `yaml:"hello"`
	FirstMajor int  `yaml:"first_major"`
}

// ---- CLIENT TRANSPORT ----

type ServerConfig struct {
	Listen         string `yaml:"listen"`
	APISecret      string `yaml:"api_secret"`
	MaxMessageSize int64  `yaml:"max_message_size"`
}

type DiscoveryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
	Domain   string `yaml:"domain"`
}

// ---- STATUS MIRROR ----

type StatusConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Transport    string `yaml:"transport"` // modbus | ingest
	Endpoint     string `yaml:"endpoint"`
	UnitID       uint8  `yaml:"unit_id"`
	Slot         uint16 `yaml:"slot"`
	DeviceName   string `yaml:"device_name"`
	IntervalMs   int    `yaml:"interval_ms"`
	TimeoutMs    int    `yaml:"timeout_ms"`
	StaleAfterMs int    `yaml:"stale_after_ms"` // 0 disables STALE
}

// ---- EVENTS ----

type EventsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"` // tcp://host:port
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
	Prefix   string `yaml:"prefix"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	Output string `yaml:"output"` // stdout, stderr
}
