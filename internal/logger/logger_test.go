package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-employee-console/internal/config"
	"github.com/jrsteele09/go-employee-console/internal/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesToFile(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "logs", "console.log")
	t.Setenv("LOG_FILE", path)
	t.Setenv("LOG_LEVEL", "debug")

	closer, err := logger.Init(config.New())
	require.NoError(t, err)

	log.Debug().Str("cycle", "abc").Msg("session active")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"cycle":"abc"`)
	require.Contains(t, string(data), `"message":"session active"`)
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInit_BadLevelDefaultsToInfo(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	t.Setenv("LOG_FILE", "-")
	t.Setenv("LOG_LEVEL", "chatty")

	closer, err := logger.Init(config.New())
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
