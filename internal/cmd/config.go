package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcourt/buzzroom/internal/relay"
)

// Config is the full server configuration. Values come from an optional YAML
// file, overridden by environment variables.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Gateway struct {
		WriteTimeoutSec int   `yaml:"write_timeout_sec"`
		ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
		PingIntervalSec int   `yaml:"ping_interval_sec"`
		MaxMessageSize  int64 `yaml:"max_message_size"`
	} `yaml:"gateway"`

	Relay struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		Stream        string `yaml:"stream"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"relay"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Gateway.WriteTimeoutSec = 10
	cfg.Gateway.ReadTimeoutSec = 60
	cfg.Gateway.PingIntervalSec = 30
	cfg.Gateway.MaxMessageSize = 4096

	rc := relay.DefaultConfig()
	cfg.Relay.URL = rc.URL
	cfg.Relay.Stream = rc.StreamName
	cfg.Relay.SubjectPrefix = rc.SubjectPrefix
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// loadConfig reads the YAML config at path (if it exists) and applies
// environment overrides.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.Relay.Enabled = getEnvAsBool("RELAY_ENABLED", cfg.Relay.Enabled)
	cfg.Relay.URL = getEnv("RELAY_NATS_URL", cfg.Relay.URL)
	cfg.Relay.Stream = getEnv("RELAY_STREAM", cfg.Relay.Stream)
	cfg.Relay.SubjectPrefix = getEnv("RELAY_SUBJECT_PREFIX", cfg.Relay.SubjectPrefix)

	return cfg, nil
}

// relayConfig converts the loaded settings into the relay package's config.
func (c *Config) relayConfig() relay.Config {
	rc := relay.DefaultConfig()
	rc.URL = c.Relay.URL
	rc.StreamName = c.Relay.Stream
	rc.SubjectPrefix = c.Relay.SubjectPrefix
	return rc
}

func (c *Config) writeTimeout() time.Duration {
	return time.Duration(c.Gateway.WriteTimeoutSec) * time.Second
}

func (c *Config) readTimeout() time.Duration {
	return time.Duration(c.Gateway.ReadTimeoutSec) * time.Second
}

func (c *Config) pingInterval() time.Duration {
	return time.Duration(c.Gateway.PingIntervalSec) * time.Second
}
