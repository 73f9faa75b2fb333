package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
mock:
  events:
    auto: true
    interval: "PT1S"
database:
  path: "/tmp/journal.db"
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
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

	if !cfg.Mock.Events.Auto {
		t.Error("Mock.Events.Auto = false, want true")
	}
	if got := cfg.GetEventInterval(); got != time.Second {
		t.Errorf("GetEventInterval() = %v, want %v", got, time.Second)
	}
	if cfg.Database.Path != "/tmp/journal.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/journal.db")
	}
	// Untouched sections keep their defaults.
	if cfg.WebSocket.Path != "/events" {
		t.Errorf("WebSocket.Path = %q, want %q", cfg.WebSocket.Path, "/events")
	}
	if cfg.Mock.Events.SuccessProbability != 0.8 {
		t.Errorf("SuccessProbability = %v, want 0.8", cfg.Mock.Events.SuccessProbability)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Mock.Events.Auto {
		t.Error("Mock.Events.Auto = true, want false by default")
	}
	if got := cfg.GetEventInterval(); got != 3*time.Second {
		t.Errorf("GetEventInterval() = %v, want 3s", got)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %q, want :memory:", cfg.Database.Path)
	}
	if cfg.WebSocket.MaxMessageSize != 65536 {
		t.Errorf("WebSocket.MaxMessageSize = %d, want 65536", cfg.WebSocket.MaxMessageSize)
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

	// A broken file is not the same as a missing one.
	if _, err := LoadOrDefault(configPath); err == nil {
		t.Error("LoadOrDefault() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
mock:
  events:
    interval: "every now and then"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for bad interval, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENTRANCEMOCK_MOCK_EVENTS_AUTO", "true")
	t.Setenv("ENTRANCEMOCK_MOCK_EVENTS_INTERVAL", "PT2S")
	t.Setenv("ENTRANCEMOCK_API_PORT", "9191")
	t.Setenv("ENTRANCEMOCK_MQTT_HOST", "broker.local")
	t.Setenv("ENTRANCEMOCK_MQTT_PORT", "not-a-port")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}

	if !cfg.Mock.Events.Auto {
		t.Error("Mock.Events.Auto = false, want true")
	}
	if got := cfg.GetEventInterval(); got != 2*time.Second {
		t.Errorf("GetEventInterval() = %v, want 2s", got)
	}
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port = %d, want 9191", cfg.API.Port)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want broker.local", cfg.MQTT.Broker.Host)
	}
	// Unparsable values leave the default in place.
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Mock.Events.Interval = "PT0S" },
			wantErr: true,
		},
		{
			name:    "empty interval",
			mutate:  func(c *Config) { c.Mock.Events.Interval = "" },
			wantErr: true,
		},
		{
			name:    "success probability above one",
			mutate:  func(c *Config) { c.Mock.Events.SuccessProbability = 1.5 },
			wantErr: true,
		},
		{
			name:    "negative unknown badge probability",
			mutate:  func(c *Config) { c.Mock.Events.UnknownBadgeProbability = -0.1 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = ""
			},
			wantErr: true,
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "relative websocket path",
			mutate:  func(c *Config) { c.WebSocket.Path = "events" },
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "PT3S", want: 3 * time.Second},
		{input: "PT1M30S", want: 90 * time.Second},
		{input: "pt1s", want: time.Second},
		{input: "500ms", want: 500 * time.Millisecond},
		{input: "3s", want: 3 * time.Second},
		{input: "", wantErr: true},
		{input: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseISODuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseISODuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseISODuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := Default()

	if got := cfg.GetReadTimeout(); got != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetWriteTimeout(); got != 30*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetIdleTimeout(); got != 60*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 60s", got)
	}
}
