package main

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logrus logger writing to stderr.
// Format "json" produces JSON lines, anything else human-readable text.
func NewLogger(cfg LogConfig) *logrus.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(parseLevel(cfg.Level))

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

func parseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// gooseLogger sends migration output to debug level so the CLI stays quiet.
type gooseLogger struct {
	log logrus.FieldLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Debugf(strings.TrimSpace(format), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatalf(format, v...)
}
