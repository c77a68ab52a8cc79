package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost     string `mapstructure:"SERVER_HOST"`
	ServerPort     string `mapstructure:"SERVER_PORT"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`

	// Database configuration
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	// Redis configuration
	RedisURL      string `mapstructure:"REDIS_URL"`
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// JWT configuration
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Domain settings
	ForbiddenUsernames    string `mapstructure:"FORBIDDEN_USERNAMES"`
	PageSize              int    `mapstructure:"PAGE_SIZE"`
	RecipeCreateRateLimit int    `mapstructure:"RATE_LIMIT_RECIPE_CREATE"`

	// Media storage
	MediaRoot    string `mapstructure:"MEDIA_ROOT"`
	MediaURL     string `mapstructure:"MEDIA_URL"`
	S3BucketName string `mapstructure:"S3_BUCKET_NAME"`
	AWSRegion    string `mapstructure:"AWS_REGION"`
}

const defaultJWTSecret = "change-me-in-production"

// secretKeys maps Docker secret file names to the config keys they override.
var secretKeys = map[string]string{
	"db_user":        "DB_USER",
	"db_password":    "DB_PASSWORD",
	"jwt_secret":     "JWT_SECRET",
	"redis_password": "REDIS_PASSWORD",
	"redis_url":      "REDIS_URL",
}

// LoadConfig creates a new Config from defaults, an optional config.yml,
// environment variables and Docker secrets, in increasing precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	setDefaults(v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// CI takes secrets from the environment only
	if GetEnvironment() != CI {
		for secret, key := range secretKeys {
			if value := readSecret(secret); value != "" {
				v.Set(key, value)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "foodgram")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "foodgram")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "foodgram.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("FORBIDDEN_USERNAMES", "me")
	v.SetDefault("PAGE_SIZE", 6)
	v.SetDefault("RATE_LIMIT_RECIPE_CREATE", 30)
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("S3_BUCKET_NAME", "")
	v.SetDefault("AWS_REGION", "")
}

// DSN returns the connection string for the configured database driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return fmt.Sprintf("file:%s?_foreign_keys=1", c.SQLitePath)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// ForbiddenUsernameList splits FORBIDDEN_USERNAMES into trimmed, non-empty names.
func (c *Config) ForbiddenUsernameList() []string {
	return splitList(c.ForbiddenUsernames)
}

// AllowedOriginList splits ALLOWED_ORIGINS into trimmed, non-empty origins.
func (c *Config) AllowedOriginList() []string {
	return splitList(c.AllowedOrigins)
}

// RedisEnabled reports whether a Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
