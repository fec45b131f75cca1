package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	baseURLVar     = "LMS_API_BASE_URL"
	appNameVar     = "APP_NAME"
	sessionFileVar = "LMS_SESSION_FILE"
	timeoutVar     = "LMS_REQUEST_TIMEOUT"
	logLevelVar    = "LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:5000/api")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "LMS Client")
}

// GetSessionFile returns where the session token is persisted between runs.
func (EnvVars) GetSessionFile() string {
	if path := GetEnv(sessionFileVar, ""); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lms-session.json"
	}
	return filepath.Join(home, ".config", "lms", "session.json")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	raw := GetEnv(timeoutVar, "15s")
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
