package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("SYSSETUP_STATE_DIR", "")
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "syssetup", "syssetup.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file was not created at %s", logPath)
		})
	}
}

func TestSetupLoggerWithOptions(t *testing.T) {
	t.Run("console only", func(t *testing.T) {
		var buf bytes.Buffer
		SetupLoggerWithOptions(Options{Verbosity: 1, Console: &buf, NoColor: true})

		log.Info().Msg("hello console")
		assert.Contains(t, buf.String(), "hello console")
	})

	t.Run("file receives log lines", func(t *testing.T) {
		var buf bytes.Buffer
		logFile := filepath.Join(t.TempDir(), "nested", "run.log")
		SetupLoggerWithOptions(Options{Verbosity: 1, Console: &buf, LogFile: logFile, NoColor: true})

		log.Info().Str("path", "/etc/motd").Msg("copied")

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"path":"/etc/motd"`)
		assert.Contains(t, string(content), "copied")
	})

	t.Run("unwritable log file falls back to console", func(t *testing.T) {
		var buf bytes.Buffer
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		SetupLoggerWithOptions(Options{Verbosity: 0, Console: &buf, LogFile: filepath.Join(blocker, "run.log"), NoColor: true})
		assert.Contains(t, buf.String(), "Failed to create log file")
	})
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(&buf)

	logger := GetLogger("merge")
	logger.Info().Msg("test message")

	assert.Contains(t, buf.String(), `"component":"merge"`)
	assert.Contains(t, buf.String(), "test message")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "merge")
	done()

	output := buf.String()
	assert.Contains(t, output, "Operation started")
	assert.Contains(t, output, "Operation completed")
	assert.Contains(t, output, "duration")
}
