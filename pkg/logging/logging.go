package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Common log attribute keys.
const (
	KeyError = "error"
	KeyStep  = "step"
	KeyPath  = "path"
	KeyList  = "list"
	KeyTitle = "title"
	KeyCount = "count"
	KeyDay   = "day"
)

// Setup opens (or creates) the log file at path and returns a logger writing
// to both the file and stdout. The returned closer closes the file.
func Setup(path, level string) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	return New(io.MultiWriter(f, os.Stdout), lvl), f, nil
}

// New returns a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return New(io.Discard, slog.LevelError+1)
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Err returns an attribute for err. A nil error yields an empty attribute,
// which slog omits.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func Step(step string) slog.Attr {
	return slog.String(KeyStep, step)
}

func Path(path string) slog.Attr {
	return slog.String(KeyPath, path)
}

func List(name string) slog.Attr {
	return slog.String(KeyList, name)
}

func Title(title string) slog.Attr {
	return slog.String(KeyTitle, title)
}

func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

func Day(day string) slog.Attr {
	return slog.String(KeyDay, day)
}
