package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetupAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trello_todo.log")

	logger, closer, err := Setup(path, "info")
	require.NoError(t, err)
	logger.Info("first run", Count(3))
	require.NoError(t, closer.Close())

	logger, closer, err = Setup(path, "info")
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Warn("second run", Title("読書"))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "level=INFO msg=\"first run\" count=3")
	assert.Contains(t, out, "level=WARN msg=\"second run\" title=読書")
	assert.NotContains(t, out, "hidden")
}

func TestSetupBadLevel(t *testing.T) {
	_, _, err := Setup(filepath.Join(t.TempDir(), "x.log"), "loud")
	assert.Error(t, err)
}

func TestErrAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)

	logger.Info("ok", Err(nil))
	logger.Error("failed", Err(errors.New("boom")))

	assert.Contains(t, buf.String(), "msg=ok\n")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestDiscard(t *testing.T) {
	// Should not panic
	Discard().Error("nothing", Step("x"), Path("/tmp"), List("ToDo"), Day("Mon"))
}
