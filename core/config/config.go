package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coredatabase "github.com/m3rciful/iptvbot/core/database"
)

// EvolutionConfig holds settings for the WhatsApp gateway (Evolution API).
type EvolutionConfig struct {
	URL      string `yaml:"url" envconfig:"EVOLUTION_API_URL"`
	APIKey   string `yaml:"api_key" envconfig:"EVOLUTION_API_KEY"`
	Instance string `yaml:"instance" envconfig:"INSTANCE_NAME"`
	// SendTimeoutSeconds bounds a single outbound send; 0 -> default (15s).
	SendTimeoutSeconds int `yaml:"send_timeout_seconds" envconfig:"EVOLUTION_SEND_TIMEOUT_SECONDS"`
}

// HTTPConfig specifies the webhook server listener.
type HTTPConfig struct {
	Listen string `yaml:"listen" envconfig:"HTTP_LISTEN"`
	Port   int    `yaml:"port" envconfig:"HTTP_PORT"`
}

// TelegramConfig holds the admin console bot settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"TELEGRAM_BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"ADMIN_TELEGRAM_ID"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// SessionConfig tunes the temporary per-phone session cache.
type SessionConfig struct {
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes" envconfig:"SESSION_SWEEP_INTERVAL_MINUTES"`
	RetentionMinutes     int `yaml:"retention_minutes" envconfig:"SESSION_RETENTION_MINUTES"`
}

// SweepInterval returns the configured sweep interval, defaulting to one hour.
func (s SessionConfig) SweepInterval() time.Duration {
	if s.SweepIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.SweepIntervalMinutes) * time.Minute
}

// Retention returns how long an untouched session survives, defaulting to two hours.
func (s SessionConfig) Retention() time.Duration {
	if s.RetentionMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(s.RetentionMinutes) * time.Minute
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// Config aggregates the full application configuration.
type Config struct {
	Evolution EvolutionConfig     `yaml:"evolution"`
	HTTP      HTTPConfig          `yaml:"http"`
	Telegram  TelegramConfig      `yaml:"telegram"`
	Database  coredatabase.Config `yaml:"database"`
	Session   SessionConfig       `yaml:"session"`
	Logging   LoggingConfig       `yaml:"logging"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Evolution.URL) == "" {
		return fmt.Errorf("evolution.url is required")
	}
	cfg.Evolution.URL = strings.TrimRight(strings.TrimSpace(cfg.Evolution.URL), "/")
	if strings.TrimSpace(cfg.Evolution.Instance) == "" {
		cfg.Evolution.Instance = "default"
	}
	if cfg.Evolution.SendTimeoutSeconds < 0 {
		return fmt.Errorf("evolution.send_timeout_seconds must be >= 0")
	}

	if strings.TrimSpace(cfg.HTTP.Listen) == "" {
		cfg.HTTP.Listen = "0.0.0.0"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 3002
	}

	// The admin console is optional: without a token the bot still answers
	// customers, it just has nobody to ask for approvals.
	if cfg.Telegram.Token != "" && cfg.Telegram.AdminID == 0 {
		return fmt.Errorf("telegram.admin_id is required when telegram.token is set")
	}
	if cfg.Telegram.LongPollTimeoutSeconds < 0 {
		return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
	}

	if cfg.Session.SweepIntervalMinutes < 0 || cfg.Session.RetentionMinutes < 0 {
		return fmt.Errorf("session intervals must be >= 0")
	}

	return cfg.Database.Normalize()
}
