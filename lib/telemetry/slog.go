package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs a text handler on the default logger. Debug enables
// debug-level records, which the scrapers use for per-page progress.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
