package utils

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		format     string
		wantLevel  logrus.Level
		expectJSON bool
	}{
		{"defaults", "", "", logrus.InfoLevel, false},
		{"debug json", "debug", "json", logrus.DebugLevel, true},
		{"case insensitive", "WARN", "JSON", logrus.WarnLevel, true},
		{"invalid level", "loud", "text", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := InitLogger(tt.level, tt.format)

			assert.Same(t, log, Log)
			assert.Equal(t, tt.wantLevel, log.GetLevel())
			_, isJSON := log.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestWithUserFields(t *testing.T) {
	InitLogger("info", "text")

	entry := WithUser("u-1", "m-1")
	assert.Equal(t, "u-1", entry.Data["user_id"])
	assert.Equal(t, "m-1", entry.Data["match_id"])

	entry = WithUser("u-1", "")
	_, hasMatch := entry.Data["match_id"]
	assert.False(t, hasMatch)
	assert.Equal(t, "m-2", WithMatch("m-2").Data["match_id"])
}
