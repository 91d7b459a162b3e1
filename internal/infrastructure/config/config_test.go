package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
bridge:
  id: "test-bridge"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
presence:
  disconnect_grace: 20
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bridge.ID != "test-bridge" {
		t.Errorf("Bridge.ID = %q, want %q", cfg.Bridge.ID, "test-bridge")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	if got := cfg.GetDisconnectGrace(); got != 20*time.Second {
		t.Errorf("GetDisconnectGrace() = %v, want %v", got, 20*time.Second)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
bridge:
  id: ""
database:
  path: "/tmp/test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty bridge.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Bridge:   BridgeConfig{ID: "tuyabridge-001"},
				Database: DatabaseConfig{Path: "/data/tuyabridge.db"},
				MQTT:     MQTTConfig{QoS: 1},
			},
			wantErr: false,
		},
		{
			name: "missing bridge id",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/tuyabridge.db"},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			config: &Config{
				Bridge: BridgeConfig{ID: "tuyabridge-001"},
			},
			wantErr: true,
		},
		{
			name: "invalid qos",
			config: &Config{
				Bridge:   BridgeConfig{ID: "tuyabridge-001"},
				Database: DatabaseConfig{Path: "/data/tuyabridge.db"},
				MQTT:     MQTTConfig{QoS: 3},
			},
			wantErr: true,
		},
		{
			name: "negative disconnect grace",
			config: &Config{
				Bridge:   BridgeConfig{ID: "tuyabridge-001"},
				Database: DatabaseConfig{Path: "/data/tuyabridge.db"},
				Presence: PresenceConfig{DisconnectGrace: -1},
			},
			wantErr: true,
		},
		{
			name: "complete cloud account",
			config: &Config{
				Bridge:   BridgeConfig{ID: "tuyabridge-001"},
				Database: DatabaseConfig{Path: "/data/tuyabridge.db"},
				Cloud: CloudConfig{
					Endpoint:     "https://openapi.tuyaeu.com",
					AccessID:     "id",
					AccessSecret: "secret",
					Username:     "user@example.com",
					Password:     "pass",
					CountryCode:  "44",
				},
			},
			wantErr: false,
		},
		{
			name: "partial cloud account",
			config: &Config{
				Bridge:   BridgeConfig{ID: "tuyabridge-001"},
				Database: DatabaseConfig{Path: "/data/tuyabridge.db"},
				Cloud: CloudConfig{
					Endpoint: "https://openapi.tuyaeu.com",
					AccessID: "id",
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCloudConfig_IsSet(t *testing.T) {
	complete := CloudConfig{
		Endpoint:     "https://openapi.tuyaeu.com",
		AccessID:     "id",
		AccessSecret: "secret",
		Username:     "user@example.com",
		Password:     "pass",
		CountryCode:  "44",
	}
	if !complete.IsSet() {
		t.Error("IsSet() = false for complete account, want true")
	}

	partial := complete
	partial.Password = ""
	if partial.IsSet() {
		t.Error("IsSet() = true for partial account, want false")
	}

	if (CloudConfig{}).IsSet() {
		t.Error("IsSet() = true for empty account, want false")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TUYABRIDGE_DATABASE_PATH", "/override/path.db")
	t.Setenv("TUYABRIDGE_CLOUD_ACCESS_SECRET", "env-secret")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/override/path.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Cloud.AccessSecret != "env-secret" {
		t.Errorf("Cloud.AccessSecret = %q, want env override", cfg.Cloud.AccessSecret)
	}
}
