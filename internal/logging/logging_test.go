package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	tests := map[string]zapcore.Level{
		"error":   zapcore.ErrorLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		" info ":  zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"":        zapcore.DebugLevel,
		"chatty":  zapcore.DebugLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, levelFromString(in), in)
	}
}

func TestNewEmptyLevelIsDebug(t *testing.T) {
	t.Parallel()

	logger, err := New("", "console")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"json", "console"} {
		logger, err := New("warn", format)
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
	}
}
