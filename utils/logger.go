// utils/logger.go
package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger.
var Log = logrus.New()

// InitLogger configures Log from LOG_LEVEL / LOG_FORMAT style values.
func InitLogger(level, format string) *logrus.Logger {
	log := logrus.New()

	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(os.Stdout)
	Log = log
	return log
}

// WithMatch scopes a log entry to a match.
func WithMatch(matchID string) *logrus.Entry {
	return Log.WithField("match_id", matchID)
}

// WithUser scopes a log entry to a user and, optionally, a match.
func WithUser(userID, matchID string) *logrus.Entry {
	fields := logrus.Fields{"user_id": userID}
	if matchID != "" {
		fields["match_id"] = matchID
	}
	return Log.WithFields(fields)
}
