package vsmark

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logger is the package logger. Silent by default so library consumers
// opt in; the CLI calls InitLogging.
var logger = zerolog.Nop()

// SetLogger replaces the package logger.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// InitLogging configures and installs a zerolog logger from the
// environment. LOG_LEVEL selects the level (debug, info, warn, error;
// default info). LOG_FORMAT=console switches from JSON to human-readable
// output.
func InitLogging() zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var l zerolog.Logger
	if os.Getenv("LOG_FORMAT") == "console" {
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		l = zerolog.New(console).With().Timestamp().Logger().Level(level)
	} else {
		l = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	}
	logger = l
	return l
}
