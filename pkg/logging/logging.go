// Package logging builds the structured JSON loggers the Lambda functions
// emit to CloudWatch. Output goes to stdout as one JSON object per line with
// the owning function name attached to every record.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a logger for one Lambda function. Level comes from LOG_LEVEL
// (debug, info, warn, error), defaulting to info.
func New(function string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelFromEnv()})
	return slog.New(h).With(slog.String("function", function))
}

// Err adapts an error into a log attribute with a stable key.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
