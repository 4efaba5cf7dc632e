package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureOnce(t *testing.T) {
	t.Cleanup(reset)
	reset()

	var first, second bytes.Buffer
	Configure(Config{Level: "debug", Output: &first})
	Configure(Config{Level: "error", Output: &second})

	l := WithComponent("fsm")
	l.Debug().Str("to", "Walk").Msg("state changed")

	assert.Zero(t, second.Len())
	var entry map[string]any
	require.NoError(t, json.Unmarshal(first.Bytes(), &entry))
	assert.Equal(t, "fsm", entry["component"])
	assert.Equal(t, "nightshade", entry["service"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "Walk", entry["to"])
}

func TestLevelFiltering(t *testing.T) {
	t.Cleanup(reset)
	reset()

	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})
	l := Base()
	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestUnconfiguredIsSilent(t *testing.T) {
	t.Cleanup(reset)
	reset()
	l := WithComponent("scene")
	assert.NotPanics(t, func() { l.Error().Msg("nowhere") })
}
