package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestConfigure_JSONOutput(t *testing.T) {
	prev := L()
	t.Cleanup(func() { def.Store(prev) })

	var buf bytes.Buffer
	l := Configure(Options{Level: "debug", JSON: true, Output: &buf})
	require.Same(t, l, L())

	L().Debug("replayed", "column", "age")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "replayed", rec["msg"])
	assert.Equal(t, "age", rec["column"])
	assert.Equal(t, "DEBUG", rec["level"])
}

func TestConfigure_LevelFilters(t *testing.T) {
	prev := L()
	t.Cleanup(func() { def.Store(prev) })

	var buf bytes.Buffer
	Configure(Options{Level: "warn", Output: &buf})
	L().Info("hidden")
	assert.Empty(t, buf.String())
	L().Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
