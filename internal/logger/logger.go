package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a logger for the given level and environment.
// Unknown levels fall back to info. Production logs JSON, anything else text.
func New(level, env string) *logrus.Logger {
	return NewWithOutput(level, env, os.Stdout)
}

// NewWithOutput is New writing to out.
func NewWithOutput(level, env string, out io.Writer) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if env == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	logger.SetOutput(out)
	return logger
}
