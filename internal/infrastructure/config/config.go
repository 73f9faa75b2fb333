package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sosodev/duration"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the entrance cockpit mock.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Mock      MockConfig      `yaml:"mock"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MockConfig contains settings for the synthetic event source.
type MockConfig struct {
	Events MockEventsConfig `yaml:"events"`

	// Seed fixes the generator PRNG. Zero seeds from the clock.
	Seed uint64 `yaml:"seed"`
}

// MockEventsConfig controls auto mode.
type MockEventsConfig struct {
	// Auto enables background generation of badge events.
	Auto bool `yaml:"auto"`

	// Interval is an ISO-8601 duration ("PT3S"). Go durations ("3s") are accepted too.
	Interval string `yaml:"interval"`

	// SuccessProbability is the chance a random badge event succeeds.
	SuccessProbability float64 `yaml:"success_probability"`

	// UnknownBadgeProbability is the chance a random badge event uses an
	// UNKNOWN-<N> badge instead of a known one. Default 0 (never).
	UnknownBadgeProbability float64 `yaml:"unknown_badge_probability"`
}

// DatabaseConfig contains SQLite database settings for the event journal.
// The default path ":memory:" keeps the journal process-local.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings for the IoT bridge.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
	Topics    MQTTTopicsConfig    `yaml:"topics"`
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

// MQTTTopicsConfig holds the topic roots used by the IoT bridge.
type MQTTTopicsConfig struct {
	// BadgeReaders is the root for badge reader traffic ("iot/badgeuse").
	BadgeReaders string `yaml:"badge_readers"`

	// Doors is the root for door traffic ("iot/porte").
	Doors string `yaml:"doors"`

	// Monitoring is the root monitoring events are mirrored under.
	Monitoring string `yaml:"monitoring"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
// An empty AllowedOrigins list allows every origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains push channel settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
	SendBuffer     int    `yaml:"send_buffer"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads the YAML file at path over the built-in defaults, applies
// ENTRANCEMOCK_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// LoadOrDefault behaves like Load but falls back to built-in defaults
// when the file does not exist. Any other read error is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return finish(defaultConfig())
	}
	return nil, err
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Mock: MockConfig{
			Events: MockEventsConfig{
				Auto:                    false,
				Interval:                "PT3S",
				SuccessProbability:      0.8,
				UnknownBadgeProbability: 0,
			},
		},
		Database: DatabaseConfig{
			Path:        ":memory:",
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "entrance-cockpit-mock",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     5,
			},
			Topics: MQTTTopicsConfig{
				BadgeReaders: "iot/badgeuse",
				Doors:        "iot/porte",
				Monitoring:   "cockpit/monitoring/events",
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/events",
			MaxMessageSize: 64 * 1024,
			PingInterval:   30,
			PongTimeout:    10,
			SendBuffer:     256,
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "entrance",
			Bucket:        "cockpit",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// envPrefix namespaces every environment override.
const envPrefix = "ENTRANCEMOCK_"

// applyEnvOverrides applies ENTRANCEMOCK_<SECTION>_<KEY> variables on top
// of file values. Unparsable numbers and booleans are ignored.
func applyEnvOverrides(cfg *Config) {
	envBool("MOCK_EVENTS_AUTO", &cfg.Mock.Events.Auto)
	envString("MOCK_EVENTS_INTERVAL", &cfg.Mock.Events.Interval)

	envString("DATABASE_PATH", &cfg.Database.Path)

	envBool("MQTT_ENABLED", &cfg.MQTT.Enabled)
	envString("MQTT_HOST", &cfg.MQTT.Broker.Host)
	envInt("MQTT_PORT", &cfg.MQTT.Broker.Port)
	envString("MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	envString("MQTT_PASSWORD", &cfg.MQTT.Auth.Password)

	envString("API_HOST", &cfg.API.Host)
	envInt("API_PORT", &cfg.API.Port)

	envBool("INFLUXDB_ENABLED", &cfg.InfluxDB.Enabled)
	envString("INFLUXDB_URL", &cfg.InfluxDB.URL)
	envString("INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

	envString("LOG_LEVEL", &cfg.Logging.Level)
}

func envString(key string, dst *string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if b, err := strconv.ParseBool(os.Getenv(envPrefix + key)); err == nil {
		*dst = b
	}
}

func envInt(key string, dst *int) {
	if n, err := strconv.Atoi(os.Getenv(envPrefix + key)); err == nil {
		*dst = n
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string

	// Mock events
	if d, err := ParseISODuration(c.Mock.Events.Interval); err != nil {
		errs = append(errs, fmt.Sprintf("mock.events.interval: %v", err))
	} else if d <= 0 {
		errs = append(errs, "mock.events.interval must be positive")
	}
	if p := c.Mock.Events.SuccessProbability; p < 0 || p > 1 {
		errs = append(errs, "mock.events.success_probability must be between 0 and 1")
	}
	if p := c.Mock.Events.UnknownBadgeProbability; p < 0 || p > 1 {
		errs = append(errs, "mock.events.unknown_badge_probability must be between 0 and 1")
	}

	// Database
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	// API
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// WebSocket
	if !strings.HasPrefix(c.WebSocket.Path, "/") {
		errs = append(errs, "websocket.path must start with /")
	}

	// InfluxDB
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ParseISODuration parses an ISO-8601 duration such as "PT3S" or "PT1M30S".
// Plain Go duration strings ("3s", "500ms") are accepted as a fallback.
func ParseISODuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if strings.HasPrefix(strings.ToUpper(s), "P") {
		d, err := duration.Parse(strings.ToUpper(s))
		if err != nil {
			return 0, fmt.Errorf("parsing ISO-8601 duration %q: %w", s, err)
		}
		return d.ToTimeDuration(), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", s, err)
	}
	return d, nil
}

// GetEventInterval returns the auto-mode interval.
// Validate guarantees it parses; an unparsable value yields zero.
func (c *Config) GetEventInterval() time.Duration {
	d, err := ParseISODuration(c.Mock.Events.Interval)
	if err != nil {
		return 0
	}
	return d
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
