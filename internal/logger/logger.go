package logger

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

var defaultLogger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
	Level:           charmlog.InfoLevel,
})

// Setup adjusts the process-wide logger. Level is one of debug, info,
// warn, error; anything else keeps info.
func Setup(level string, json bool) {
	switch level {
	case "debug":
		defaultLogger.SetLevel(charmlog.DebugLevel)
	case "warn":
		defaultLogger.SetLevel(charmlog.WarnLevel)
	case "error":
		defaultLogger.SetLevel(charmlog.ErrorLevel)
	default:
		defaultLogger.SetLevel(charmlog.InfoLevel)
	}
	if json {
		defaultLogger.SetFormatter(charmlog.JSONFormatter)
	}
}

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
func Fatal(msg string, args ...any) { defaultLogger.Fatal(msg, args...) }

// With returns a sub-logger carrying the given key-value pairs.
func With(args ...any) *charmlog.Logger {
	return defaultLogger.With(args...)
}
