package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvTransform(t *testing.T) {
	cases := map[string]string{
		"GYMGATE_SERVER_ADDR":              "server.addr",
		"GYMGATE_SERVER_DEVICE_RATE_LIMIT": "server.device_rate_limit",
		"GYMGATE_AUTH_JWT_SECRET":          "auth.jwt_secret",
		"GYMGATE_MQTT_BROKER_URL":          "mqtt.broker_url",
		"GYMGATE_LIVENESS_OFFLINE_TTL":     "liveness.offline_ttl",
		"GYMGATE_SYNC_RETRY_MAX_ATTEMPTS":  "sync_retry.max_attempts",
		"GYMGATE_DATABASE_PATH":            "database.path",
		"GYMGATE_LOG_LEVEL":                "log.level",
	}
	for in, want := range cases {
		assert.Equal(t, want, envTransform(in), in)
	}
}

func TestLoad_EnvOverridesAndValidation(t *testing.T) {
	// Point the file search at an empty temp dir so a developer's local
	// config.yaml cannot leak into the test.
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	t.Setenv("GYMGATE_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("GYMGATE_SERVER_ADDR", ":9999")
	t.Setenv("GYMGATE_LIVENESS_OFFLINE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Liveness.OfflineTTL)

	// Defaults survive underneath the overrides.
	assert.Equal(t, 120, cfg.Server.DeviceRateLimit)
	assert.Equal(t, "gymgate", cfg.MQTT.TopicPrefix)
	assert.Equal(t, 5, cfg.SyncRetry.MaxAttempts)
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GYMGATE_AUTH_JWT_SECRET", "tooshort")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_EnabledMQTTRequiresBroker(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GYMGATE_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("GYMGATE_MQTT_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("GYMGATE_MQTT_BROKER_URL", "tcp://localhost:1883")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.BrokerURL)
}
