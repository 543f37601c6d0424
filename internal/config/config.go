package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API      APIConfig
	Poll     PollConfig
	Session  SessionConfig
	Download DownloadConfig
	Log      LogConfig
	Stub     StubConfig
}

// APIConfig holds connection settings for the conversion service
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PollConfig holds job status polling settings
type PollConfig struct {
	Interval time.Duration
	Warmup   time.Duration
}

// SessionConfig holds client-side session persistence settings
type SessionConfig struct {
	Path string
}

// DownloadConfig holds settings for saving converted files
type DownloadConfig struct {
	Dir string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// StubConfig holds settings for the local development server
type StubConfig struct {
	Host               string
	Port               int
	JWTSecret          string
	ProcessingDuration time.Duration
	FailureRate        float64
	Redis              RedisConfig
}

// RedisConfig holds optional Redis settings for the stub server cache
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Load reads configuration from file and environment variables. A missing
// config file is not an error: defaults plus environment apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VIDCONV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigDir())
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !strings.HasSuffix(config.API.BaseURL, "/") {
		config.API.BaseURL += "/"
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.baseurl", "http://localhost:8080/")
	v.SetDefault("api.timeout", "30s")

	// Polling defaults: the first check is delayed because a job cannot
	// plausibly finish the instant it was submitted.
	v.SetDefault("poll.interval", "5s")
	v.SetDefault("poll.warmup", "5s")

	// Session defaults
	v.SetDefault("session.path", filepath.Join(defaultConfigDir(), "session.json"))

	// Download defaults
	v.SetDefault("download.dir", ".")

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Stub server defaults
	v.SetDefault("stub.host", "0.0.0.0")
	v.SetDefault("stub.port", 8080)
	v.SetDefault("stub.jwtsecret", "dev-secret")
	v.SetDefault("stub.processingduration", "10s")
	v.SetDefault("stub.failurerate", 0.0)
	v.SetDefault("stub.redis.enabled", false)
	v.SetDefault("stub.redis.host", "localhost")
	v.SetDefault("stub.redis.port", 6379)
	v.SetDefault("stub.redis.password", "")
	v.SetDefault("stub.redis.db", 0)
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".vidconv")
}
