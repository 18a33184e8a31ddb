package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string
	LogLevel       string
	ListenAddr     string
	StorageBackend string
	PostgresDSN    string
	DataDir        string
	SessionSecret  string
	SessionDays    int
	CORSOrigins    []string
}

// Load reads configuration from the environment (and an optional .env
// file) with sane development defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LISTEN_ADDR", ":8088")
	v.SetDefault("STORAGE_BACKEND", "file")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_DAYS", 30)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	cfg := &Config{
		Env:            v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		ListenAddr:     v.GetString("LISTEN_ADDR"),
		StorageBackend: v.GetString("STORAGE_BACKEND"),
		PostgresDSN:    v.GetString("POSTGRES_DSN"),
		DataDir:        v.GetString("DATA_DIR"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionDays:    v.GetInt("SESSION_DAYS"),
		CORSOrigins:    strings.Split(v.GetString("CORS_ORIGINS"), ","),
	}
	if cfg.SessionSecret == "" && cfg.Env != "production" {
		cfg.SessionSecret = "dev_session_secret_change_me"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.StorageBackend == "postgres" && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.StorageBackend == "file" && c.DataDir == "" {
		return errors.New("File storage requires DATA_DIR to be set")
	}
	if len(c.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}
	if c.SessionDays <= 0 {
		return errors.New("SESSION_DAYS must be positive")
	}
	return nil
}
