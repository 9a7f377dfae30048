package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	CorsConfig
	GitHubConfig
	StorageConfig
	ResilienceConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetDataFolder() string
	GetLogLevel() string
	GetRequestTimeout() time.Duration
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	GitHub
	Storage
	Resilience
}

// New builds a Config backed by the process environment. A .env file in the
// working directory is loaded first when present.
func New() Config {
	loadDotEnv()
	return newConfig(source{})
}

func newConfig(src source) Config {
	return mainConfig{
		EnvVars:    EnvVars{src},
		Cors:       Cors{src},
		GitHub:     GitHub{src},
		Storage:    Storage{src},
		Resilience: Resilience{src},
	}
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
}
