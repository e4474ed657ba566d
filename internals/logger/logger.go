package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init configures the process-wide logrus logger. JSON output in production so
// the platform log collector can index fields; human-readable text elsewhere.
func Init() {
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
