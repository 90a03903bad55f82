package logger

import "bytes"
import "encoding/json"
import "log/slog"
import "testing"

import "github.com/stretchr/testify/require"

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelInfo, ParseLevel("info"))
	require.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "json")
	log.Info("dropped")
	require.Zero(t, buf.Len())

	log.Warn("keyspace drop failed", "keyspace", "todo")
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "keyspace drop failed", record["msg"])
	require.Equal(t, "todo", record["keyspace"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", "text").Debug("cql", "verb", "SELECT")
	require.Contains(t, buf.String(), "level=DEBUG")
	require.Contains(t, buf.String(), "verb=SELECT")
}

func TestGet(t *testing.T) {
	defaultLogger = nil
	require.NotNil(t, Get())
	require.Same(t, Get(), Get())
}

func TestInit(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		defaultLogger = nil
		slog.SetDefault(previous)
	})

	var buf bytes.Buffer
	log := Init(&buf, "info", "text")
	require.Same(t, log, Get())
	require.Same(t, log, slog.Default())

	Get().Info("seeded todos", "count", 3)
	require.Contains(t, buf.String(), "count=3")
}
