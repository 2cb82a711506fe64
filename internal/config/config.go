package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
// The loaded object is passed to the components that need it; there is no
// ambient global configuration.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Auth     AuthConfig
	Keys     KeysConfig
	Database DatabaseConfig
	StoreDB  StoreDBConfig
	Cache    CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"itumy-key-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	StaticDir   string `envconfig:"STATIC_DIR" default:"./static"`
}

// AuthConfig holds admin session token settings.
// JWTSecret intentionally has no default: when empty, a random per-process
// key is generated at startup and a warning is logged.
type AuthConfig struct {
	JWTSecret  string        `envconfig:"JWT_SECRET" default:""`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"8h"`
}

// KeysConfig holds API key lifecycle settings. The inactivity window is
// logically independent from the key TTL even though both default to 30 days.
type KeysConfig struct {
	TTLDays        int `envconfig:"KEY_TTL_DAYS" default:"30"`
	InactivityDays int `envconfig:"INACTIVITY_DAYS" default:"30"`
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"api_key_db"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
}

// StoreDBConfig selects the store backend.
type StoreDBConfig struct {
	Type string `envconfig:"STORE_DB_TYPE" default:"mysql"` // mysql or sqlite
	Path string `envconfig:"STORE_DB_PATH" default:"./data/keys.db"`
}

// CacheConfig holds cache settings for the stats endpoint.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the MySQL data source name.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// InactivityWindow returns the inactivity rule window as a duration.
func (k *KeysConfig) InactivityWindow() time.Duration {
	return time.Duration(k.InactivityDays) * 24 * time.Hour
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
