// Package logger builds the logrus loggers used across lumitemp.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a root logger writing to stderr with the given level and
// format ("text" or "json").
func New(level, format string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", FormatText:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return log, nil
}

// Component tags log entries with the name of the emitting component.
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}

// NewDefault returns a component logger backed by the logrus standard logger.
func NewDefault(name string) *logrus.Entry {
	return Component(logrus.StandardLogger(), name)
}

// Discard returns a component logger that drops everything.
func Discard(name string) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return Component(log, name)
}
