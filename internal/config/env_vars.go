package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar = "APP_NAME"
	envVar     = "ENV"
	demoVar    = "DEMO"
	demoTTLVar = "DEMO_TOKEN_TTL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Employee Console")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

// GetDemo reports whether the console should run against the in-process fake API
func (EnvVars) GetDemo() bool {
	return GetEnvBool(demoVar, false)
}

// GetDemoTokenTTL is the lifetime of tokens issued by the demo API. Keep it
// short to watch the countdown run out.
func (EnvVars) GetDemoTokenTTL() time.Duration {
	return GetEnvDuration(demoTTLVar, 2*time.Minute)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envVar)))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(envVar)))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvDuration accepts Go duration strings ("5s") or a bare number of seconds
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(envVar))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
