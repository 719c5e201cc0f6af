package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vivianhuwz/cobrancayb/internal/config"
)

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New(config.Config{Environment: "production"})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zap.InfoLevel))
	require.False(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNewAppliesConfiguredLevel(t *testing.T) {
	log, err := New(config.Config{Environment: "development", LogLevel: "debug"})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(config.Config{LogLevel: "loud"})
	require.Error(t, err)
}
