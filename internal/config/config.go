package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string     `mapstructure:"env"` // current application environment (local, dev, production)
	TelegramAPIToken string     `mapstructure:"-"`   // Telegram API token loaded from environment
	GeminiAPIKey     string     `mapstructure:"-"`   // Gemini API key loaded from environment
	GeminiModel      string     `mapstructure:"gemini_model"`
	BroadcastCron    string     `mapstructure:"broadcast_cron"` // cron expression for the daily digest, UTC
	MessageLimit     int        `mapstructure:"message_limit"`  // longest message sent without splitting
	Retry            Retry      `mapstructure:"retry"`
	Dictionary       Dictionary `mapstructure:"dictionary"`
	DB               DB         `mapstructure:"database"`
}

// Retry controls how outbound calls are retried.
type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

// Dictionary contains dictionary client configuration.
type Dictionary struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"` // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("broadcast_cron", "0 19 * * *")
	v.SetDefault("message_limit", 4000)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", "2s")
	v.SetDefault("dictionary.timeout", "15s")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.GeminiAPIKey = v.GetString("gemini_api_key")
	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
