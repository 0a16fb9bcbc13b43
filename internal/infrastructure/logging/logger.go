package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with bridge-specific defaults.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a new Logger writing text records to stderr, leaving
// stdout free for --list output.
//
// Parameters:
//   - level: Log level name (debug, info, warning, error)
//   - version: Application version for the default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(level string, version string) *Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	handler := slog.NewTextHandler(os.Stderr, opts).
		WithAttrs([]slog.Attr{
			slog.String("service", "fusionsolar2mqtt"),
			slog.String("version", version),
		})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// ParseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warning (or warn), error.
// Defaults to info if unrecognised; the config layer rejects unknown
// levels before this is reached.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	mqttLogger := logger.With("component", "mqtt")
//	mqttLogger.Info("connected") // Includes component=mqtt
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default creates a logger for use before configuration is loaded.
// It logs at info level and should only be used during early startup.
func Default() *Logger {
	return New("info", "dev")
}
