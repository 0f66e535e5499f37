package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LimitConfig holds the ceiling and window of one named rate limiter.
type LimitConfig struct {
	Ceiling       int `mapstructure:"ceiling"`        // Maximum admitted calls per window
	WindowSeconds int `mapstructure:"window_seconds"` // Fixed window length in seconds
}

// Window returns the configured window as a time.Duration.
func (l LimitConfig) Window() time.Duration {
	return time.Duration(l.WindowSeconds) * time.Second
}

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML/JSON keys to Go struct fields.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port    int    `mapstructure:"port"`     // HTTP server port (default: 8080)
		BaseURL string `mapstructure:"base_url"` // Base URL for generating share links
	} `mapstructure:"server"`

	// Database configuration section for SQLite settings
	Database struct {
		Name string `mapstructure:"name"` // SQLite database file name
	} `mapstructure:"database"`

	// Share configuration for token issuing
	Share struct {
		TokenLength int `mapstructure:"token_length"` // Length of generated share tokens
		ExpiryDays  int `mapstructure:"expiry_days"`  // Days before a share token expires
	} `mapstructure:"share"`

	// Analytics configuration for asynchronous user-event tracking
	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`  // Size of the tracking event channel buffer
		WorkerCount int `mapstructure:"worker_count"` // Number of worker goroutines persisting events
	} `mapstructure:"analytics"`

	// Monitor configuration for resource link health checking
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // Interval in minutes between checks
	} `mapstructure:"monitor"`

	// RateLimit configuration: one fixed-window limiter per action class.
	// Limits are per process instance; with several instances behind a load
	// balancer the effective ceiling is ceiling * instances. Set backend to
	// "redis" to share counters between instances instead.
	RateLimit struct {
		Backend              string      `mapstructure:"backend"`                // "memory" (default) or "redis"
		RedisAddr            string      `mapstructure:"redis_addr"`             // Redis address when backend=redis
		SweepIntervalSeconds int         `mapstructure:"sweep_interval_seconds"` // Expired-entry sweep period
		Global               LimitConfig `mapstructure:"global"`                 // All API requests, keyed by IP
		CreateShare          LimitConfig `mapstructure:"create_share"`           // Share token issuing
		CreateJob            LimitConfig `mapstructure:"create_job"`             // Job creation
		CreateCourse         LimitConfig `mapstructure:"create_course"`          // Course creation
		Click                LimitConfig `mapstructure:"click"`                  // Click recording
	} `mapstructure:"ratelimit"`
}

// LoadConfig loads the application configuration using Viper.
// It supports environment variable overrides and YAML configuration files.
// Returns a populated Config struct or an error if configuration loading fails.
func LoadConfig() (*Config, error) {
	// Enable automatic environment variable binding
	// This allows config values to be overridden via environment variables
	viper.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	// e.g., "server.port" becomes "SERVER_PORT"
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Specify the directory path where Viper should look for config files
	viper.AddConfigPath("./configs")

	// Specify the name of the config file (without the extension)
	viper.SetConfigName("config")

	// Specify the type/format of the config file (YAML in this case)
	viper.SetConfigType("yaml")

	// Set default values for all configuration options
	// These will be used if no config file is found or if specific keys are missing
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.name", "sharetracker.db")
	viper.SetDefault("share.token_length", 32)
	viper.SetDefault("share.expiry_days", 30)
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("monitor.interval_minutes", 5)
	viper.SetDefault("ratelimit.backend", "memory")
	viper.SetDefault("ratelimit.redis_addr", "localhost:6379")
	viper.SetDefault("ratelimit.sweep_interval_seconds", 60)
	viper.SetDefault("ratelimit.global.ceiling", 100)
	viper.SetDefault("ratelimit.global.window_seconds", 60)
	viper.SetDefault("ratelimit.create_share.ceiling", 50)
	viper.SetDefault("ratelimit.create_share.window_seconds", 3600)
	viper.SetDefault("ratelimit.create_job.ceiling", 20)
	viper.SetDefault("ratelimit.create_job.window_seconds", 3600)
	viper.SetDefault("ratelimit.create_course.ceiling", 20)
	viper.SetDefault("ratelimit.create_course.window_seconds", 3600)
	viper.SetDefault("ratelimit.click.ceiling", 1000)
	viper.SetDefault("ratelimit.click.window_seconds", 60)

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		// Check if the error is specifically "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// This is not a fatal error - we'll use default values
			log.Println("Config file not found, using default values")
		} else {
			// Any other error (permissions, malformed YAML, etc.) is fatal
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the loaded configuration into our Config structure
	// This converts the Viper configuration into our strongly-typed struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Log the loaded configuration for debugging and verification purposes
	log.Printf("Configuration loaded: Server Port=%d, DB Name=%s, Share Expiry=%dd, RateLimit Backend=%s",
		cfg.Server.Port, cfg.Database.Name, cfg.Share.ExpiryDays, cfg.RateLimit.Backend)

	// Return the successfully loaded and parsed configuration
	return &cfg, nil
}
