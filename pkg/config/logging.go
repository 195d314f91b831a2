package config

import (
	"io"
	"os"
	"strings"

	"github.com/tilerace/race-engine/log"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the logger described by LogLevel, LogFormat and
// LogConfig and installs it as the default logger.
func SetupLogger(w io.Writer) (*log.Logger, error) {
	var logger *log.Logger
	switch LogFormat {
	case "json":
		logger = log.New(w,
			parseLogLevel(LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(w,
			parseLogLevel(LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if LogConfig != "" {
		data, err := os.ReadFile(LogConfig)
		if err != nil {
			return nil, err
		}
		if logger, err = logger.WithFilter(strings.TrimSpace(string(data))); err != nil {
			return nil, err
		}
	}
	log.ResetDefault(logger)
	return logger, nil
}
