package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	portEnvVar           = "PORT"
	appNameVar           = "APP_NAME"
	folderEnvVar         = "FOLDER"
	baseURLVar           = "BASE_URL"
	logLevelVar          = "LOG_LEVEL"
	requestTimeoutEnvVar = "REQUEST_TIMEOUT"
	envVar               = "ENV"
)

// source resolves a setting from the environment first, then from the file
// overlay (if any), then from the supplied default.
type source struct {
	overlay map[string]string
}

func (s source) get(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := s.overlay[envVar]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (s source) getInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(s.get(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func (s source) getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(s.get(envVar, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

type EnvVars struct {
	source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.get(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.get(appNameVar, "GitHub Dashboard")
}

func (e EnvVars) GetDataFolder() string {
	return e.get(folderEnvVar, "./data")
}

func (e EnvVars) GetLogLevel() string {
	return e.get(logLevelVar, "info")
}

// GetRequestTimeout bounds every outbound network call.
func (e EnvVars) GetRequestTimeout() time.Duration {
	return e.getDuration(requestTimeoutEnvVar, 15*time.Second)
}

func (e EnvVars) GetEnv() string {
	return e.get(envVar, "DEV")
}

// GetBaseURL returns the public base URL of the token exchange proxy (e.g., "https://dash.example.com")
func (e EnvVars) GetBaseURL() string {
	return e.get(baseURLVar, "http://localhost:8080")
}

func GetEnv(envVar, defaultValue string) string {
	return source{}.get(envVar, defaultValue)
}
