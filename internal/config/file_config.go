package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML overlay read by the dashboard CLI. Environment
// variables always win over values from the file.
type FileConfig struct {
	App     AppFileConfig     `yaml:"app"`
	GitHub  GitHubFileConfig  `yaml:"github"`
	Storage StorageFileConfig `yaml:"storage"`
}

type AppFileConfig struct {
	Name           string `yaml:"name"`
	Env            string `yaml:"env"`
	LogLevel       string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	DataFolder     string `yaml:"data_folder"`
	RequestTimeout string `yaml:"request_timeout"`
}

type GitHubFileConfig struct {
	ClientID     string `yaml:"client_id"`
	RedirectURI  string `yaml:"redirect_uri" validate:"omitempty,url"`
	ProxyBaseURL string `yaml:"proxy_base_url" validate:"omitempty,url"`
	GraphQLURL   string `yaml:"graphql_url" validate:"omitempty,url"`
}

type StorageFileConfig struct {
	Backend string          `yaml:"backend" validate:"omitempty,oneof=memory file redis"`
	Redis   RedisFileConfig `yaml:"redis"`
}

type RedisFileConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
	Prefix   string `yaml:"prefix"`
}

// Load builds a Config from the environment with the YAML file at path as a
// fallback layer. An empty path behaves like New.
func Load(path string) (Config, error) {
	loadDotEnv()
	if path == "" {
		return newConfig(source{}), nil
	}

	fc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newConfig(source{overlay: fc.values()}), nil
}

// ReadFile parses and validates a YAML config file.
func ReadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config ReadFile] failed to read config: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("[config ReadFile] failed to parse config: %w", err)
	}

	if err := fc.Validate(); err != nil {
		return nil, err
	}
	return &fc, nil
}

func (fc *FileConfig) Validate() error {
	if err := validator.New().Struct(fc); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if fc.App.RequestTimeout != "" {
		if _, err := time.ParseDuration(fc.App.RequestTimeout); err != nil {
			return fmt.Errorf("config validation failed: request_timeout: %w", err)
		}
	}
	return nil
}

// values flattens the file into the environment variable namespace.
func (fc *FileConfig) values() map[string]string {
	values := map[string]string{
		appNameVar:           fc.App.Name,
		envVar:               fc.App.Env,
		logLevelVar:          fc.App.LogLevel,
		folderEnvVar:         fc.App.DataFolder,
		requestTimeoutEnvVar: fc.App.RequestTimeout,
		clientIDVar:          fc.GitHub.ClientID,
		redirectURIVar:       fc.GitHub.RedirectURI,
		proxyBaseURLVar:      fc.GitHub.ProxyBaseURL,
		graphQLURLVar:        fc.GitHub.GraphQLURL,
		storageBackendVar:    fc.Storage.Backend,
		redisAddrVar:         fc.Storage.Redis.Addr,
		redisPasswordVar:     fc.Storage.Redis.Password,
		redisPrefixVar:       fc.Storage.Redis.Prefix,
	}
	if fc.Storage.Redis.DB != 0 {
		values[redisDBVar] = strconv.Itoa(fc.Storage.Redis.DB)
	}
	return values
}
