package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useStateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

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
			dir := useStateHome(t)

			var buf bytes.Buffer
			SetupLoggerWithOutput(tt.verbosity, &buf)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			_, err := os.Stat(filepath.Join(dir, "busy", "busy.log"))
			assert.NoError(t, err, "log file should be created")
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	dir := useStateHome(t)
	assert.Equal(t, filepath.Join(dir, "busy", "busy.log"), getLogFilePath())
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := GetLogger("test-component")
	logger.Info().Msg("test message")

	assert.Contains(t, buf.String(), `"component":"test-component"`)
	assert.Contains(t, buf.String(), "test message")
}

func TestLogCommand(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	LogCommand(logger, "test-cmd", []string{"arg1", "arg2"})

	output := buf.String()
	assert.Contains(t, output, "test-cmd")
	assert.Contains(t, output, "arg1")
	assert.Contains(t, output, "arg2")
	assert.Contains(t, output, "Executing command")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "build")
	require.Contains(t, buf.String(), "Operation started")

	done()
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), "duration")
}

func TestSetupLogger_ReplacesLogFile(t *testing.T) {
	useStateHome(t)
	t.Cleanup(Close)

	SetupLoggerWithOutput(1, &bytes.Buffer{})
	first := logFile
	require.NotNil(t, first)

	SetupLoggerWithOutput(1, &bytes.Buffer{})
	require.NotNil(t, logFile)
	assert.NotSame(t, first, logFile)

	_, err := first.WriteString("late write\n")
	assert.ErrorIs(t, err, os.ErrClosed, "previous handle must be closed")
}

func TestClose(t *testing.T) {
	useStateHome(t)

	var console bytes.Buffer
	SetupLoggerWithOutput(1, &console)
	handle := logFile
	require.NotNil(t, handle)

	Close()
	Close()
	assert.Nil(t, logFile)

	_, err := handle.WriteString("x")
	assert.ErrorIs(t, err, os.ErrClosed)

	log.Info().Msg("after close")
	assert.Contains(t, console.String(), "after close")
}
