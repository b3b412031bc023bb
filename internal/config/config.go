package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root application configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	CORS       CORSConfig       `yaml:"cors"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Log        LogConfig        `yaml:"log"`
}

// AppConfig describes the service on the info and health endpoints.
type AppConfig struct {
	Name        string `yaml:"name"        env:"APP_NAME"        env-default:"Worddee API"`
	Version     string `yaml:"version"     env:"APP_VERSION"     env-default:"1.0.0"`
	Description string `yaml:"description" env:"APP_DESCRIPTION" env-default:"Vocabulary learning API"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8001"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// defaults returns the settings that default to true. cleanenv treats false
// as unset and would apply an env-default over an explicit YAML false, so
// these are set before the config file and environment are read.
func defaults() Config {
	return Config{
		Database:  DatabaseConfig{AutoMigrate: true},
		CORS:      CORSConfig{AllowCredentials: true},
		RateLimit: RateLimitConfig{Enabled: true},
	}
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig selects the store and holds its connection settings. The
// pool settings apply to PostgreSQL only.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"             env:"DATABASE_DRIVER"             env-default:"postgres"`
	URL             string        `yaml:"url"                env:"DATABASE_URL"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"`
}

// AuthConfig holds the admin shared secret.
type AuthConfig struct {
	AdminAPIKey string `yaml:"admin_api_key" env:"ADMIN_API_KEY" env-required:"true"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"   env:"CORS_ORIGINS"           env-separator:"," env-default:"http://localhost:3000"`
	AllowedMethods   []string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-separator:"," env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-separator:"," env-default:"Content-Type,X-API-Key,X-Request-Id"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"600"`
}

// DictionaryConfig holds the external dictionary API settings.
type DictionaryConfig struct {
	Enabled bool          `yaml:"enabled" env:"ENABLE_DICTIONARY_API" env-default:"false"`
	URL     string        `yaml:"url"     env:"DICTIONARY_API_URL"    env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	APIKey  string        `yaml:"api_key" env:"DICTIONARY_API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"DICTIONARY_TIMEOUT"    env-default:"10s"`
}

// RateLimitConfig holds admin rate limiting settings. An empty RedisAddr
// selects the in-process limiter.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"          env:"RATE_LIMIT_ENABLED"`
	PerMinute       int           `yaml:"per_minute"       env:"RATE_LIMIT_PER_MINUTE"       env-default:"60"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"1m"`
	Prefix          string        `yaml:"prefix"           env:"RATE_LIMIT_PREFIX"           env-default:"worddee:rl"`
	RedisAddr       string        `yaml:"redis_addr"       env:"REDIS_ADDR"`
	RedisPassword   string        `yaml:"redis_password"   env:"REDIS_PASSWORD"`
	RedisDB         int           `yaml:"redis_db"         env:"REDIS_DB"                    env-default:"0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
