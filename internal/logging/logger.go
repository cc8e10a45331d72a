package logging

import (
	"log/slog"
	"os"
)

// NewStdoutHandler is the JSON handler every process logs through.
func NewStdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(NewStdoutHandler()))
}
