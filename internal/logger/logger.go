package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-employee-console/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init points the global zerolog logger at the configured log file. The
// returned closer must be called on shutdown. LOG_FILE=- sends logs to
// stderr, which is only useful outside the console UI.
func Init(cfg config.Config) (io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	path := cfg.GetLogFile()
	if path == "" || path == "-" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("app", cfg.GetAppName()).Logger()
		return io.NopCloser(nil), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	log.Logger = zerolog.New(f).With().Timestamp().Str("app", cfg.GetAppName()).Str("env", cfg.GetEnv()).Logger()
	return f, nil
}
