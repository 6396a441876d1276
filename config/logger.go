package config

import (
	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Fields is the common field type for structured log output.
type Fields map[string]any

// Logger is the global logger instance. It works at info level even before
// InitApp runs so early startup code can log.
var Logger *slog.Logger = newLogger("info")

// InitLogger rebuilds the global logger at the given level.
// Empty or unknown levels fall back to info.
func InitLogger(level string) {
	if level == "" {
		level = "info"
	}
	Logger = newLogger(level)
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	// Restrict the built-in fields to datetime/level/message; everything else
	// is emitted as top-level structured fields.
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// InfoWithFields emits an info log with structured request-context fields.
func InfoWithFields(msg string, fields Fields) {
	Logger.WithFields(slog.M(fields)).Info(msg)
}

// WarnWithFields emits a warn log with structured request-context fields.
func WarnWithFields(msg string, fields Fields) {
	Logger.WithFields(slog.M(fields)).Warn(msg)
}

// ErrorWithFields emits an error log with structured request-context fields.
func ErrorWithFields(msg string, fields Fields) {
	Logger.WithFields(slog.M(fields)).Error(msg)
}
