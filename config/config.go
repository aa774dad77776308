// Package config provides Viper-based configuration loading for gamelink clients.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds settings for the request (HTTP) channel.
type ServerConfig struct {
	// Host is the server hostname or IP.
	Host string `mapstructure:"host"`
	// Port is the HTTP API port.
	Port int `mapstructure:"port"`
	// SSL selects https/wss when true.
	SSL bool `mapstructure:"ssl"`
	// ServerKey is the shared key sent as basic auth by the authenticate endpoints.
	ServerKey string `mapstructure:"server_key"`
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// BaseURL returns the HTTP base URL for the request channel.
//
// Postcondition: Returns a non-empty "scheme://host:port" string.
func (s ServerConfig) BaseURL() string {
	scheme := "http"
	if s.SSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, s.Host, s.Port)
}

// SocketConfig holds settings for the realtime channel.
type SocketConfig struct {
	// Host overrides ServerConfig.Host for the socket when non-empty.
	Host string `mapstructure:"host"`
	// Port is the realtime API port.
	Port int `mapstructure:"port"`
	// SSL selects wss when true.
	SSL bool `mapstructure:"ssl"`
	// WriteTimeout is the per-frame write deadline.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ConnectTimeout bounds the websocket dial and handshake.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// RequestTimeoutTicks is how many ticks a correlated request may stay
	// pending before it fails with a timeout.
	RequestTimeoutTicks int `mapstructure:"request_timeout_ticks"`
	// InboundQueueSize is the capacity of the inbound frame queue drained
	// by each tick.
	InboundQueueSize int `mapstructure:"inbound_queue_size"`
}

// URL returns the websocket URL for the realtime channel.
//
// Precondition: host must be non-empty.
// Postcondition: Returns a non-empty "scheme://host:port/ws" string.
func (s SocketConfig) URL(host string) string {
	if s.Host != "" {
		host = s.Host
	}
	scheme := "ws"
	if s.SSL {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/ws", scheme, host, s.Port)
}

// RetryConfig holds retry settings for the request channel.
type RetryConfig struct {
	// MaxRetries is the number of retry attempts after the initial try.
	// Zero disables retries.
	MaxRetries int `mapstructure:"max_retries"`
	// BaseInterval is the initial backoff delay.
	BaseInterval time.Duration `mapstructure:"base_interval"`
	// MaxInterval caps the backoff delay.
	MaxInterval time.Duration `mapstructure:"max_interval"`
	// Jitter is the randomization factor applied to each delay, 0 to 1.
	Jitter float64 `mapstructure:"jitter"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level client configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Socket  SocketConfig  `mapstructure:"socket"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSocket(c.Socket); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRetry(c.Retry); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Host == "" {
		errs = append(errs, "server.host must not be empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ServerKey == "" {
		errs = append(errs, "server.server_key must not be empty")
	}
	if s.Timeout < 0 {
		errs = append(errs, "server.timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSocket(s SocketConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("socket.port must be 1-65535, got %d", s.Port))
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, "socket.write_timeout must not be negative")
	}
	if s.ConnectTimeout < 0 {
		errs = append(errs, "socket.connect_timeout must not be negative")
	}
	if s.RequestTimeoutTicks < 1 {
		errs = append(errs, fmt.Sprintf("socket.request_timeout_ticks must be >= 1, got %d", s.RequestTimeoutTicks))
	}
	if s.InboundQueueSize < 1 {
		errs = append(errs, fmt.Sprintf("socket.inbound_queue_size must be >= 1, got %d", s.InboundQueueSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRetry(r RetryConfig) error {
	var errs []string
	if r.MaxRetries < 0 {
		errs = append(errs, fmt.Sprintf("retry.max_retries must be >= 0, got %d", r.MaxRetries))
	}
	if r.BaseInterval < 0 {
		errs = append(errs, "retry.base_interval must not be negative")
	}
	if r.MaxInterval < 0 {
		errs = append(errs, "retry.max_interval must not be negative")
	}
	if r.MaxInterval > 0 && r.MaxInterval < r.BaseInterval {
		errs = append(errs, "retry.max_interval must not be less than retry.base_interval")
	}
	if r.Jitter < 0 || r.Jitter > 1 {
		errs = append(errs, fmt.Sprintf("retry.jitter must be between 0 and 1, got %g", r.Jitter))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GAMELINK_ prefix
	v.SetEnvPrefix("GAMELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is supplied, pointing
// at a local development server.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshalling defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 7350)
	v.SetDefault("server.ssl", false)
	v.SetDefault("server.server_key", "defaultkey")
	v.SetDefault("server.timeout", "30s")

	v.SetDefault("socket.port", 7350)
	v.SetDefault("socket.ssl", false)
	v.SetDefault("socket.write_timeout", "10s")
	v.SetDefault("socket.connect_timeout", "10s")
	v.SetDefault("socket.request_timeout_ticks", 120)
	v.SetDefault("socket.inbound_queue_size", 256)

	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_interval", "250ms")
	v.SetDefault("retry.max_interval", "5s")
	v.SetDefault("retry.jitter", 0.5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
