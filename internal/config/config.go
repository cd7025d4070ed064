package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name" validate:"required"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIBaseURL       string        `mapstructure:"public_api_base_url" validate:"omitempty,url"`
	RequestTimeoutMs int64         `mapstructure:"request_timeout_ms" validate:"gt=0"`
	RequestTimeout   time.Duration `mapstructure:"-"`
	LoginPath        string        `mapstructure:"login_path" validate:"required,startswith=/"`
	DownloadDir      string        `mapstructure:"download_dir" validate:"required"`

	TokenStoreType  string        `mapstructure:"token_store_type" validate:"oneof=none disabled memory bbolt"`
	TokenStorePath  string        `mapstructure:"token_store_path" validate:"required_if=TokenStoreType bbolt"`
	TokenTTLSeconds int64         `mapstructure:"token_ttl_seconds" validate:"gte=0"`
	TokenTTL        time.Duration `mapstructure:"-"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "apictl")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("public_api_base_url", "")
	v.SetDefault("request_timeout_ms", 10000)
	v.SetDefault("login_path", "/login")
	v.SetDefault("download_dir", "./downloads")
	v.SetDefault("token_store_type", "bbolt")
	v.SetDefault("token_store_path", "./data/token.db")
	v.SetDefault("token_ttl_seconds", 0) // never expires

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutMs) * time.Millisecond
	cfg.TokenTTL = time.Duration(cfg.TokenTTLSeconds) * time.Second

	return &cfg, nil
}
