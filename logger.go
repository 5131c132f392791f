package levelset

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with level-set specific helpers so engines log
// with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses the default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogCompute logs a band compute pass. An unset radius logs as
// rsearch=unset rather than a fake zero.
func (l *Logger) LogCompute(kind string, rSearch float64, hasRSearch bool, bandCells int) {
	l.Debug("narrow band computed",
		"mesh", kind,
		"rsearch", rSearchValue(rSearch, hasRSearch),
		"cells", bandCells,
	)
}

// LogUpdate logs a band update pass.
func (l *Logger) LogUpdate(kind string, records int, rSearch float64, hasRSearch bool, bandCells int) {
	l.Debug("narrow band updated",
		"mesh", kind,
		"records", records,
		"rsearch", rSearchValue(rSearch, hasRSearch),
		"cells", bandCells,
	)
}

func rSearchValue(rSearch float64, ok bool) slog.Value {
	if !ok {
		return slog.StringValue("unset")
	}
	return slog.Float64Value(rSearch)
}
