package logger

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    *LoggerConfig
		wantErr   bool
		wantLevel zerolog.Level
	}{
		{
			name: "valid production environment",
			config: &LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
				TimeField:      "timestamp",
				TimeFormat:     "unix",
				Fields:         map[string]interface{}{"key": "value"},
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:    "invalid configuration - wrong env",
			config:  &LoggerConfig{ServiceName: "bad-service", Env: "wrong-env", Level: "debug"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			config:  &LoggerConfig{Env: "prod", Level: "invalid-level"},
			wantErr: true,
		},
		{
			name:    "invalid output target",
			config:  &LoggerConfig{Env: "prod", OutputTarget: "syslog"},
			wantErr: true,
		},
		{
			name: "valid staging environment on stderr",
			config: &LoggerConfig{
				Env:          "staging",
				Level:        "warn",
				OutputTarget: "stderr",
				Stacktrace:   true,
			},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name:      "test environment with console format",
			config:    &LoggerConfig{Env: "test", Level: "error", Format: "console"},
			wantLevel: zerolog.ErrorLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.config)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestDefaults(t *testing.T) {
	dev := &LoggerConfig{Env: "dev", Level: "info"}
	dev.setDefaults()
	assert.Equal(t, "console", dev.Format)
	assert.True(t, dev.WithCaller)
	assert.False(t, dev.Stacktrace)
	assert.Equal(t, "scorekeeper-service", dev.ServiceName)

	prod := &LoggerConfig{}
	prod.setDefaults()
	assert.Equal(t, "prod", prod.Env)
	assert.Equal(t, "info", prod.Level)
	assert.Equal(t, "json", prod.Format)
	assert.Equal(t, "stdout", prod.OutputTarget)
	assert.Equal(t, "ts", prod.TimeField)
	assert.True(t, prod.Stacktrace)
	assert.NotNil(t, prod.Fields)
}

func TestTimeLayout(t *testing.T) {
	assert.Equal(t, time.RFC3339, timeLayout("rfc3339"))
	assert.Equal(t, time.RFC3339Nano, timeLayout("rfc3339nano"))
	assert.Equal(t, zerolog.TimeFormatUnix, timeLayout("unix"))
	assert.Equal(t, zerolog.TimeFormatUnixMs, timeLayout("unix_ms"))
}

func TestDebugLogFileCreation(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := New(&LoggerConfig{Env: "dev", Level: "debug"})
	require.NoError(t, err)

	_, statErr := os.Stat(DebugLogPath)
	assert.NoError(t, statErr)
}
