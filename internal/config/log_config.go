package config

type LogConfig interface {
	GetLogLevel() string
	GetLogFile() string
}

type Log struct{}

var _ LogConfig = Log{}

func (Log) GetLogLevel() string {
	return GetEnv("LOG_LEVEL", "info")
}

// GetLogFile is where logs go; the terminal belongs to the console UI
func (Log) GetLogFile() string {
	return GetEnv("LOG_FILE", "employee-console.log")
}
