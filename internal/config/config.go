package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
	SessionConfig
	LogConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetDemo() bool
	GetDemoTokenTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Store
	Session
	Log
}

var dotEnvOnce sync.Once

// New loads an optional .env file from the working directory and returns
// the environment backed configuration. Variables already set in the
// environment win over the file.
func New(envFiles ...string) Config {
	dotEnvOnce.Do(func() {
		if len(envFiles) == 0 {
			envFiles = []string{".env"}
		}
		_ = godotenv.Load(envFiles...)
	})
	return mainConfig{}
}
