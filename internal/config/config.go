package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	UserAgent          string        `mapstructure:"user_agent"`
	ApplyParameters    bool          `mapstructure:"apply_parameters"`
	Decoder            string        `mapstructure:"decoder"`
	DetectContentType  bool          `mapstructure:"detect_content_type"`

	HistoryType            string        `mapstructure:"history_type"`
	HistoryPath            string        `mapstructure:"history_path"`
	HistoryTTLSeconds      int64         `mapstructure:"history_ttl_seconds"`
	HistoryCleanupSeconds  int64         `mapstructure:"history_cleanup_interval_seconds"`
	HistoryTTL             time.Duration `mapstructure:"-"`
	HistoryCleanupInterval time.Duration `mapstructure:"-"`

	SinksFile string `mapstructure:"sinks_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "netreq")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("user_agent", "netreq/1.0")
	v.SetDefault("apply_parameters", false)
	v.SetDefault("decoder", "json")
	v.SetDefault("detect_content_type", true)
	v.SetDefault("history_type", "bbolt")
	v.SetDefault("history_path", "./data/history.db")
	v.SetDefault("history_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("history_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("sinks_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.HistoryTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid history_ttl_seconds (must be positive seconds)")
	}
	if cfg.HistoryCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid history_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.HistoryTTL = time.Duration(cfg.HistoryTTLSeconds) * time.Second
	cfg.HistoryCleanupInterval = time.Duration(cfg.HistoryCleanupSeconds) * time.Second

	return &cfg, nil
}
