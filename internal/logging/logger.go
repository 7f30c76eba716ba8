package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON slog logger writing to stdout and returns its handler
// so it can later be combined with other sinks.
func Setup() slog.Handler {
	handler := NewJSONHandler(os.Stdout)
	slog.SetDefault(slog.New(handler))
	return handler
}

func NewJSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
