package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, INFO)

	log.Debug("hidden")
	log.Info("cycle %d", 3)
	log.Critical("fatal-ish")

	got := lines(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, "info", got[0]["level"])
	assert.Equal(t, "cycle 3", got[0]["message"])
	assert.Equal(t, "fatal", got[1]["level"])
}

func TestLoggerTraceAndSetMinLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, ERROR)

	log.Warn("dropped")
	log.SetMinLevel(TRACE)
	log.Trace("kept")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "trace", got[0]["level"])
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, DEBUG).With("session", "abc")

	log.Debug("hello")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0]["session"])
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	log, err := NewFileLogger(path, INFO, false)
	require.NoError(t, err)

	log.Warn("speed %.1f", 4.5)
	require.NoError(t, log.Close())
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "speed 4.5")
	assert.Contains(t, string(data), "WRN")
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"trace": TRACE, "DEBUG": DEBUG, "": INFO, "warning": WARN, "error": ERROR, "critical": CRITICAL,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "CRITICAL", CRITICAL.String())
}
