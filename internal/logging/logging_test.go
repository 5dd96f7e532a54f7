package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelAccessorsWriteToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Debug().Msg("debug line")
	Info().Str("device_id", "dev-1").Msg("info line")
	Warn().Msg("warn line")
	Error().Msg("error line")

	out := buf.String()
	for _, want := range []string{
		`"level":"debug"`,
		`"level":"info"`,
		`"level":"warn"`,
		`"level":"error"`,
		`"device_id":"dev-1"`,
		"info line",
	} {
		assert.Contains(t, out, want)
	}
}

func TestInitLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Debug().Msg("dropped")
	Info().Msg("dropped too")
	Warn().Msg("kept")

	out := buf.String()
	require.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestWithAttachesComponentField(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	l := With("sync-retrier")
	l.Info().Msg("pass complete")

	assert.Contains(t, buf.String(), `"component":"sync-retrier"`)
}
