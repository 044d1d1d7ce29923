package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

var cfg = newViper()

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("BADGER_PATH", "/tmp/tokenlink")
	v.SetDefault("ISSUE_COOLDOWN", "0s")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("ISSUER_URL", "http://localhost:8080")
	v.SetDefault("LOGIN_URL", "http://localhost:3000/login")
	return v
}

// Get ...
func Get(key string) string {
	return cfg.GetString(key)
}

// GetOrDefault ...
func GetOrDefault(key, def string) string {
	env := cfg.GetString(key)
	if env != "" {
		return env
	}
	return def
}

// ReadFile merges a config file (any format viper supports, including .env) over the defaults.
// Environment variables still take precedence.
func ReadFile(path string) error {
	if path == "" {
		return nil
	}
	cfg.SetConfigFile(path)
	return cfg.ReadInConfig()
}

// Config is the resolved server configuration.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	StoreDriver   string
	PostgresURL   string
	BadgerPath    string
	RedisURL      string
	IssuerKeyHash string
	SessionKey    string
	CORSOrigin    string
	IssuerURL     string
	IssuerKey     string
	LoginURL      string
	IssueCooldown time.Duration
	SessionTTL    time.Duration
	AutoMigrate   bool
}

// IsProd reports whether the server runs in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// Load resolves the configuration from the environment and any file read with ReadFile.
func Load() Config {
	return Config{
		Port:          cfg.GetString("PORT"),
		Env:           cfg.GetString("ENV"),
		LogLevel:      cfg.GetString("LOG_LEVEL"),
		StoreDriver:   strings.ToLower(cfg.GetString("STORE_DRIVER")),
		PostgresURL:   cfg.GetString("POSTGRES_URL"),
		BadgerPath:    cfg.GetString("BADGER_PATH"),
		RedisURL:      cfg.GetString("REDIS_URL"),
		IssuerKeyHash: cfg.GetString("ISSUER_KEY_HASH"),
		SessionKey:    cfg.GetString("SESSION_KEY"),
		CORSOrigin:    cfg.GetString("CORS_ORIGIN"),
		IssuerURL:     cfg.GetString("ISSUER_URL"),
		IssuerKey:     cfg.GetString("ISSUER_KEY"),
		LoginURL:      cfg.GetString("LOGIN_URL"),
		IssueCooldown: cfg.GetDuration("ISSUE_COOLDOWN"),
		SessionTTL:    cfg.GetDuration("SESSION_TTL"),
		AutoMigrate:   cfg.GetBool("AUTO_MIGRATE"),
	}
}
