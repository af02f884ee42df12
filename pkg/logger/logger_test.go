package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit_LevelOverride(t *testing.T) {
	Init("dex-adapter", "prod", "warn")

	require.NotNil(t, L())
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Core().Enabled(zapcore.WarnLevel))
}

func TestInit_BadLevelKeepsDefault(t *testing.T) {
	Init("dex-adapter", "prod", "not-a-level")

	assert.True(t, L().Core().Enabled(zapcore.InfoLevel))
}

func TestAccessorsSelfInitialize(t *testing.T) {
	base = nil
	sugar = nil

	require.NotNil(t, L())
	require.NotNil(t, S())
}
