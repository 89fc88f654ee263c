package config

import "strings"

type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
	StoreRedis  StoreKind = "redis"
	StoreMulti  StoreKind = "multi" // file + redis
)

type StoreConfig interface {
	GetStoreKind() StoreKind
	GetSessionFile() string
	GetSessionPassphrase() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreKind() StoreKind {
	switch kind := StoreKind(strings.ToLower(GetEnv("SESSION_STORE", string(StoreFile)))); kind {
	case StoreMemory, StoreFile, StoreRedis, StoreMulti:
		return kind
	default:
		return StoreFile
	}
}

func (Store) GetSessionFile() string {
	return GetEnv("SESSION_FILE", "./data/session.json")
}

// GetSessionPassphrase enables encryption of the session file when set
func (Store) GetSessionPassphrase() string {
	return GetEnv("SESSION_PASSPHRASE", "")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "employee-console:")
}
