package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the application configuration
type Config struct {
	Debug     bool            `mapstructure:"debug" yaml:"debug"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Traversal TraversalConfig `mapstructure:"traversal" yaml:"traversal"`
}

// LogConfig selects the zap preset
type LogConfig struct {
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Name     string `mapstructure:"name" yaml:"name"`
	SSLMode  string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	Path     string `mapstructure:"path" yaml:"path"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port" yaml:"port"`
	Host string `mapstructure:"host" yaml:"host"`
}

// RedisConfig configures the optional closure cache. Empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// TraversalConfig bounds the closure walk. MaxDepth 0 means unbounded.
type TraversalConfig struct {
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

// DSN builds the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host,
		d.User,
		d.Password,
		d.Name,
		d.Port,
		d.SSLMode,
	)
}

// Addr returns host:port for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path searches
// the working directory and ./config for config.yaml.
func LoadFrom(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env")

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix("DECKTREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we'll use defaults and env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		return fmt.Errorf("database.path is required for the sqlite driver")
	}
	if c.Traversal.MaxDepth < 0 {
		return fmt.Errorf("traversal.max_depth must be >= 0, got %d", c.Traversal.MaxDepth)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log.mode", getEnv("LOG_MODE", "development"))
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.host", getEnv("PG_HOST", "localhost"))
	v.SetDefault("database.port", getEnvInt("PG_PORT", 5432))
	v.SetDefault("database.user", getEnv("PG_USER", "postgres"))
	v.SetDefault("database.password", getEnv("PG_PASSWORD", ""))
	v.SetDefault("database.name", getEnv("PG_DATABASE", "decktree"))
	v.SetDefault("database.ssl_mode", getEnv("PG_SSL_MODE", "disable"))
	v.SetDefault("database.path", "decktree.db")
	v.SetDefault("server.port", getEnvInt("SERVER_PORT", 8080))
	v.SetDefault("server.host", getEnv("SERVER_HOST", "localhost"))
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("traversal.max_depth", 0)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
