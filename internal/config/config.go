// Package config loads gymgate configuration with koanf: struct defaults,
// then an optional YAML file, then GYMGATE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "GYMGATE_CONFIG"

// defaultConfigPaths are searched in order; the first file found wins.
var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gymgate/config.yaml",
}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	MQTT      MQTTConfig      `koanf:"mqtt"`
	Liveness  LivenessConfig  `koanf:"liveness"`
	SyncRetry SyncRetryConfig `koanf:"sync_retry"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required"`

	// Device-facing endpoints are unauthenticated, so they get their own
	// per-IP rate limit.
	DeviceRateLimit       int           `koanf:"device_rate_limit" validate:"gt=0"`
	DeviceRateLimitWindow time.Duration `koanf:"device_rate_limit_window" validate:"gt=0"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
	Env  string `koanf:"env" validate:"oneof=dev prod"`

	// SeedDev loads dev fixtures on startup (dev env only).
	SeedDev bool `koanf:"seed_dev"`
}

type AuthConfig struct {
	// JWTSecret signs staff bearer tokens (HS256). Minimum 32 bytes.
	JWTSecret string `koanf:"jwt_secret" validate:"required,min=32"`
}

type MQTTConfig struct {
	// Enabled toggles the command transport. When off, dispatched
	// commands stay pending until a device polls or acks.
	Enabled bool `koanf:"enabled"`

	BrokerURL string `koanf:"broker_url" validate:"required_if=Enabled true"`
	ClientID  string `koanf:"client_id"`

	// TopicPrefix is prepended to per-device command topics:
	// <prefix>/devices/<device_id>/commands
	TopicPrefix string `koanf:"topic_prefix"`

	PublishTimeout time.Duration `koanf:"publish_timeout"`
}

type LivenessConfig struct {
	// OfflineTTL marks a device offline after this long without a
	// heartbeat. 0 disables the sweeper.
	OfflineTTL    time.Duration `koanf:"offline_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

type SyncRetryConfig struct {
	// MaxAttempts bounds automatic requeue of failed sync items.
	// 0 disables the retrier; items then stay failed for operator action.
	MaxAttempts  int           `koanf:"max_attempts" validate:"gte=0"`
	BaseInterval time.Duration `koanf:"base_interval"`
	MaxInterval  time.Duration `koanf:"max_interval"`
	PollInterval time.Duration `koanf:"poll_interval"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                  ":8080",
			DeviceRateLimit:       120,
			DeviceRateLimitWindow: time.Minute,
			ShutdownTimeout:       10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "./data/gymgate.db",
			Env:  "dev",
		},
		MQTT: MQTTConfig{
			Enabled:        false,
			ClientID:       "gymgate-server",
			TopicPrefix:    "gymgate",
			PublishTimeout: 5 * time.Second,
		},
		Liveness: LivenessConfig{
			OfflineTTL:    2 * time.Minute,
			SweepInterval: 30 * time.Second,
		},
		SyncRetry: SyncRetryConfig{
			MaxAttempts:  5,
			BaseInterval: 30 * time.Second,
			MaxInterval:  30 * time.Minute,
			PollInterval: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the effective configuration and validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// GYMGATE_SERVER_ADDR -> server.addr, GYMGATE_AUTH_JWT_SECRET ->
	// auth.jwt_secret, and so on. Only the first underscore becomes a dot;
	// the koanf keys themselves contain underscores.
	if err := k.Load(env.Provider("GYMGATE_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return ""
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "GYMGATE_"))
	// Section prefix becomes the koanf path head; the rest keeps its
	// underscores (e.g. SERVER_DEVICE_RATE_LIMIT -> server.device_rate_limit).
	for _, section := range []string{"server", "database", "auth", "mqtt", "liveness", "sync_retry", "log"} {
		if key == section {
			return key
		}
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}
