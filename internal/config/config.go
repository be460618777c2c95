package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	RedisURL    string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	BaseURL  string
	LogLevel string

	ShareCacheTTL time.Duration

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// fileConfig mirrors the optional YAML file named by CONFIG_FILE.
type fileConfig struct {
	Server struct {
		Port     string `yaml:"port"`
		Env      string `yaml:"env"`
		BaseURL  string `yaml:"base_url"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Auth struct {
		AccessExpiry  string `yaml:"access_expiry"`
		RefreshExpiry string `yaml:"refresh_expiry"`
	} `yaml:"auth"`
	Shares struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"shares"`
	SMTP SMTPConfig `yaml:"smtp"`
}

// Load resolves configuration as defaults, then the YAML file, then the
// environment (including .env).
func Load() (*Config, error) {
	_ = godotenv.Load()

	defaults := map[string]string{
		"PORT":               "8080",
		"ENV":                "development",
		"JWT_ACCESS_EXPIRY":  "15m",
		"JWT_REFRESH_EXPIRY": "168h",
		"BASE_URL":           "http://localhost:8080",
		"LOG_LEVEL":          "info",
		"SHARE_CACHE_TTL":    "10m",
		"SMTP_PORT":          "587",
	}

	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		if err := mergeFile(path, defaults); err != nil {
			return nil, err
		}
	}

	get := func(key string) string {
		return getEnv(key, defaults[key])
	}

	accessExpiry, err := time.ParseDuration(get("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(get("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 168 * time.Hour
	}

	cacheTTL, err := time.ParseDuration(get("SHARE_CACHE_TTL"))
	if err != nil {
		cacheTTL = 10 * time.Minute
	}

	return &Config{
		Port:        get("PORT"),
		Env:         get("ENV"),
		DatabaseURL: get("DATABASE_URL"),
		RedisURL:    get("REDIS_URL"),

		JWTSecret:        getEnvOrPanic("JWT_SECRET"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,

		BaseURL:  get("BASE_URL"),
		LogLevel: get("LOG_LEVEL"),

		ShareCacheTTL: cacheTTL,

		SMTP: SMTPConfig{
			Host:     get("SMTP_HOST"),
			Port:     get("SMTP_PORT"),
			Username: get("SMTP_USERNAME"),
			Password: get("SMTP_PASSWORD"),
			From:     get("SMTP_FROM"),
		},
	}, nil
}

func mergeFile(path string, into map[string]string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	set := func(key, value string) {
		if value != "" {
			into[key] = value
		}
	}
	set("PORT", f.Server.Port)
	set("ENV", f.Server.Env)
	set("BASE_URL", f.Server.BaseURL)
	set("LOG_LEVEL", f.Server.LogLevel)
	set("DATABASE_URL", f.Dependencies.PostgresURL)
	set("REDIS_URL", f.Dependencies.RedisURL)
	set("JWT_ACCESS_EXPIRY", f.Auth.AccessExpiry)
	set("JWT_REFRESH_EXPIRY", f.Auth.RefreshExpiry)
	set("SHARE_CACHE_TTL", f.Shares.CacheTTL)
	set("SMTP_HOST", f.SMTP.Host)
	set("SMTP_PORT", f.SMTP.Port)
	set("SMTP_USERNAME", f.SMTP.Username)
	set("SMTP_PASSWORD", f.SMTP.Password)
	set("SMTP_FROM", f.SMTP.From)
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
