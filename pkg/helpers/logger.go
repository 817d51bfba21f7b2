package helpers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a text logger at debug level in development and a JSON
// logger at info level elsewhere.
func NewLogger(appName, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env}).Debug("logger initialized")
	return logger
}

// LogError logs msg with err and fields attached. fields may be nil.
func LogError(logger *logrus.Logger, msg string, err error, fields logrus.Fields) {
	entry := logger.WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}
