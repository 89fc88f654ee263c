package config

import "time"

type SessionConfig interface {
	GetWarningThreshold() time.Duration
	GetLogoutNotifyTimeout() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetWarningThreshold is when the countdown banner switches to the danger style
func (Session) GetWarningThreshold() time.Duration {
	return GetEnvDuration("SESSION_WARNING_SECONDS", 10*time.Second)
}

func (Session) GetLogoutNotifyTimeout() time.Duration {
	return GetEnvDuration("LOGOUT_NOTIFY_TIMEOUT", 3*time.Second)
}
