package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerFields(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&LogOptions{Level: "debug", Format: "json", Out: &out})

	l.LogError(errors.New("boom"), "lease failed", "size", 64, "kind", "slab")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &ev))
	assert.Equal(t, "error", ev["level"])
	assert.Equal(t, "lease failed", ev["message"])
	assert.Equal(t, "boom", ev["error"])
	assert.Equal(t, float64(64), ev["size"])
	assert.Equal(t, "slab", ev["kind"])
}

func TestLevelFiltering(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&LogOptions{Level: "warn", Format: "json", Out: &out})
	l.LogDebug("hidden")
	l.LogInfo("hidden")
	assert.Zero(t, out.Len())

	l.LogWarn("shown")
	assert.Contains(t, out.String(), "shown")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&LogOptions{Level: "loud", Format: "json", Out: &out})
	assert.Contains(t, out.String(), "invalid log level")

	out.Reset()
	l.LogDebug("hidden")
	l.LogInfo("visible")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "visible")
}

func TestSetupReplacesPackageLogger(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	var out bytes.Buffer
	Setup(&LogOptions{Level: "info", Format: "json", Out: &out})
	Info("hello", "k", "v")
	assert.Contains(t, out.String(), `"k":"v"`)
}
