package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration for the current environment and
// reports every violation at once.
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for the postgres driver")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for the postgres driver")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for the sqlite driver")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("must be postgres or sqlite, got %q", cfg.DBDriver))
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}
	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	}
	if cfg.PageSize < 1 {
		add("PAGE_SIZE", "must be at least 1")
	}
	if cfg.RecipeCreateRateLimit < 0 {
		add("RATE_LIMIT_RECIPE_CREATE", "must not be negative")
	}

	if GetEnvironment() == Production {
		if cfg.JWTSecret == defaultJWTSecret || len(cfg.JWTSecret) < 32 {
			add("JWT_SECRET", "must be a non-default secret of at least 32 characters in production")
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			add("DB_PASSWORD", "is required in production")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}
