package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Tuya BLE bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bridge   BridgeConfig   `yaml:"bridge"`
	Cloud    CloudConfig    `yaml:"cloud"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Presence PresenceConfig `yaml:"presence"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BridgeConfig contains bridge instance identification.
type BridgeConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// CloudConfig contains the default Tuya IoT platform account.
//
// All six fields together form one login context. The bridge can operate
// without a default account (accounts may also come from stored config
// entries), so every field is optional here.
type CloudConfig struct {
	Endpoint     string `yaml:"endpoint"`
	AccessID     string `yaml:"access_id"`
	AccessSecret string `yaml:"access_secret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	CountryCode  string `yaml:"country_code"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for availability history.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// PresenceConfig contains availability debounce settings.
type PresenceConfig struct {
	// DisconnectGrace is how long (in seconds) to wait after a disconnect
	// signal before a device is reported unavailable. BLE transports report
	// spurious brief disconnects; the grace period collapses them.
	DisconnectGrace int `yaml:"disconnect_grace"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: TUYABRIDGE_SECTION_KEY
// For example: TUYABRIDGE_DATABASE_PATH, TUYABRIDGE_CLOUD_ACCESS_SECRET
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			ID:   "tuyabridge-001",
			Name: "Tuya BLE Bridge",
		},
		Database: DatabaseConfig{
			Path:        "./data/tuyabridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "tuyabridge-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Presence: PresenceConfig{
			DisconnectGrace: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: TUYABRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("TUYABRIDGE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Cloud account - secrets should come from the environment, not the file
	if v := os.Getenv("TUYABRIDGE_CLOUD_ENDPOINT"); v != "" {
		cfg.Cloud.Endpoint = v
	}
	if v := os.Getenv("TUYABRIDGE_CLOUD_ACCESS_ID"); v != "" {
		cfg.Cloud.AccessID = v
	}
	if v := os.Getenv("TUYABRIDGE_CLOUD_ACCESS_SECRET"); v != "" {
		cfg.Cloud.AccessSecret = v
	}
	if v := os.Getenv("TUYABRIDGE_CLOUD_USERNAME"); v != "" {
		cfg.Cloud.Username = v
	}
	if v := os.Getenv("TUYABRIDGE_CLOUD_PASSWORD"); v != "" {
		cfg.Cloud.Password = v
	}
	if v := os.Getenv("TUYABRIDGE_CLOUD_COUNTRY_CODE"); v != "" {
		cfg.Cloud.CountryCode = v
	}

	// MQTT
	if v := os.Getenv("TUYABRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("TUYABRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("TUYABRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("TUYABRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Bridge validation
	if c.Bridge.ID == "" {
		errs = append(errs, "bridge.id is required")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Presence validation
	if c.Presence.DisconnectGrace < 0 {
		errs = append(errs, "presence.disconnect_grace must not be negative")
	}

	// Cloud account is optional, but a partially specified one is almost
	// certainly a mistake - either give all six fields or none.
	if c.Cloud.partiallySpecified() {
		errs = append(errs, "cloud account is incomplete: endpoint, access_id, access_secret, username, password and country_code must all be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// partiallySpecified reports whether some but not all cloud account fields are set.
func (c CloudConfig) partiallySpecified() bool {
	fields := []string{c.Endpoint, c.AccessID, c.AccessSecret, c.Username, c.Password, c.CountryCode}
	set := 0
	for _, f := range fields {
		if f != "" {
			set++
		}
	}
	return set > 0 && set < len(fields)
}

// IsSet reports whether a complete cloud account is configured.
func (c CloudConfig) IsSet() bool {
	return c.Endpoint != "" && c.AccessID != "" && c.AccessSecret != "" &&
		c.Username != "" && c.Password != "" && c.CountryCode != ""
}

// GetDisconnectGrace returns the presence disconnect grace period as a Duration.
func (c *Config) GetDisconnectGrace() time.Duration {
	return time.Duration(c.Presence.DisconnectGrace) * time.Second
}
