package config

import "time"

type Config interface {
	EnvConfig
}

type EnvConfig interface {
	GetAPIBaseURL() string
	GetAppName() string
	GetSessionFile() string
	GetRequestTimeout() time.Duration
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
