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

// ValidateConfig checks if the configuration meets the requirements for the given environment
func ValidateConfig(cfg *Config, env Environment) error {
	var errors []ValidationError

	if cfg.LLMAPIKey == "" {
		errors = append(errors, ValidationError{"LLM_API_KEY", "LLM_API_KEY, LLM_API_KEY_FILE or the llm_api_key secret must be set"})
	}
	if cfg.LLMTimeout <= 0 {
		errors = append(errors, ValidationError{"LLM_TIMEOUT", "must be positive"})
	}
	if cfg.LLMModel == "" {
		errors = append(errors, ValidationError{"LLM_MODEL", "must not be empty"})
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBPath == "" {
			errors = append(errors, ValidationError{"DB_PATH", "required for the sqlite driver"})
		}
	case "postgres":
		if cfg.DatabaseURL == "" && cfg.DBHost == "" {
			errors = append(errors, ValidationError{"DB_HOST", "DATABASE_URL or DB_HOST is required for the postgres driver"})
		}
	default:
		errors = append(errors, ValidationError{"DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	if cfg.RecsRateLimitPerHour < 0 {
		errors = append(errors, ValidationError{"RATE_LIMIT_RECS_PER_HOUR", "must not be negative"})
	}

	// Front-ends must authenticate in production
	if env == Production && cfg.JWTSecret == "" {
		errors = append(errors, ValidationError{"JWT_SECRET", "jwt_secret secret is required in production"})
	}

	if len(errors) > 0 {
		msgs := make([]string, len(errors))
		for i, e := range errors {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}

	return nil
}
