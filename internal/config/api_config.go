package config

import "time"

type APIConfig interface {
	GetAPIBaseURL() string
	GetPageSize() int
	GetRequestTimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the root of the employee API, e.g. "http://localhost:8080/api/users"
func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8080/api/users")
}

func (API) GetPageSize() int {
	size := GetEnvInt("PAGE_SIZE", 5)
	if size <= 0 {
		return 5
	}
	return size
}

func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration("REQUEST_TIMEOUT", 10*time.Second)
}
