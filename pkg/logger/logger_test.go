package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel logrus.Level
		wantJSON  bool
		wantErr   bool
	}{
		{name: "test.default", wantLevel: logrus.InfoLevel},
		{name: "test.debug.text", level: "debug", format: "text", wantLevel: logrus.DebugLevel},
		{name: "test.warn.json", level: "warn", format: "JSON", wantLevel: logrus.WarnLevel, wantJSON: true},
		{name: "test.bad.level", level: "loud", wantErr: true},
		{name: "test.bad.format", format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, log.GetLevel())
			_, isJSON := log.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}

func TestComponent(t *testing.T) {
	entry := Discard("scraper")
	assert.Equal(t, "scraper", entry.Data["component"])
}
