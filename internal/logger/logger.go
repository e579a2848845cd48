package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is usable before Init; Init only reconfigures it.
var Log = logrus.New()

func Init(level, format string) {
	Log.SetOutput(os.Stdout)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text", "console":
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	Log.SetLevel(logLevel)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

// ForSubmission tags log lines with the submission id.
func ForSubmission(id string) *logrus.Entry {
	return Log.WithField("submission_id", id)
}
