package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// LLM configuration
	LLMAPIURL          string
	LLMAPIKey          string
	LLMModel           string
	LLMTimeout         time.Duration
	LLMTemperature     *float64
	LLMAppURL          string
	LLMAppName         string
	LLMBreakerFailures uint32
	LLMBreakerTimeout  time.Duration

	// Extraction behaviour
	DedupeTitles   bool
	DisableDefault bool

	// Database configuration
	DBDriver    string
	DBPath      string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Conversation sessions and rate limiting
	SessionTTL           time.Duration
	RecsRateLimitPerHour int

	// JWT configuration
	JWTSecret string

	// CORSAllowedOrigins lists browser origins allowed to call the API; empty allows any
	CORSAllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string
}

const (
	DefaultLLMAPIURL = "https://openrouter.ai/api/v1"
	DefaultLLMModel  = "deepseek/deepseek-chat-v3.1:free"
	DefaultTimeout   = 60 * time.Second
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	if err := load(cfg, env); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg, env); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(cfg *Config, env Environment) error {
	var err error

	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.ServerPort = getEnv("SERVER_PORT", "8000")

	cfg.LLMAPIURL = strings.TrimRight(getEnv("LLM_API_URL", DefaultLLMAPIURL), "/")
	cfg.LLMModel = getEnv("LLM_MODEL", DefaultLLMModel)
	cfg.LLMAppURL = os.Getenv("LLM_APP_URL")
	cfg.LLMAppName = os.Getenv("LLM_APP_NAME")
	if cfg.LLMAPIKey, err = loadAPIKey(); err != nil {
		return err
	}
	if cfg.LLMTimeout, err = getDuration("LLM_TIMEOUT", DefaultTimeout); err != nil {
		return err
	}
	if raw := os.Getenv("LLM_TEMPERATURE"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid LLM_TEMPERATURE %q: %w", raw, err)
		}
		cfg.LLMTemperature = &t
	}
	failures, err := getInt("LLM_BREAKER_FAILURES", 5)
	if err != nil {
		return err
	}
	if failures < 0 {
		return fmt.Errorf("LLM_BREAKER_FAILURES must not be negative")
	}
	cfg.LLMBreakerFailures = uint32(failures)
	if cfg.LLMBreakerTimeout, err = getDuration("LLM_BREAKER_TIMEOUT", 30*time.Second); err != nil {
		return err
	}

	if cfg.DedupeTitles, err = getBool("RECS_DEDUPE_TITLES", false); err != nil {
		return err
	}
	if cfg.DisableDefault, err = getBool("RECS_DISABLE_DEFAULT", false); err != nil {
		return err
	}

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", "sqlite"))
	cfg.DBPath = getEnv("DB_PATH", filepath.Join("data", "app.db"))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getSecret("DB_USER", "db_user")
	cfg.DBPassword = getSecret("DB_PASSWORD", "db_password")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")

	cfg.RedisURL = getSecret("REDIS_URL", "redis_url")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisPassword = getSecret("REDIS_PASSWORD", "redis_password")
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return err
	}

	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return err
	}
	if cfg.RecsRateLimitPerHour, err = getInt("RATE_LIMIT_RECS_PER_HOUR", 20); err != nil {
		return err
	}

	cfg.JWTSecret = getSecret("JWT_SECRET", "jwt_secret")
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	defaultFormat := "json"
	if env == Development {
		defaultFormat = "console"
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", defaultFormat)

	return nil
}

// RedisEnabled reports whether a Redis endpoint was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// PostgresDSN builds the lib/pq connection string
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// loadAPIKey reads the provider key from LLM_API_KEY, LLM_API_KEY_FILE or the llm_api_key secret
func loadAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("LLM_API_KEY")); key != "" {
		return key, nil
	}
	if keyFile := os.Getenv("LLM_API_KEY_FILE"); keyFile != "" {
		keyBytes, err := os.ReadFile(keyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read API key file: %w", err)
		}
		key := strings.TrimSpace(string(keyBytes))
		if key == "" {
			return "", fmt.Errorf("API key file is empty")
		}
		return key, nil
	}
	return readSecret("llm_api_key"), nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getSecret prefers the environment variable and falls back to a Docker secret
func getSecret(envKey, secretName string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	return readSecret(secretName)
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return b, nil
}

// getDuration accepts Go durations ("90s") and bare integers as seconds ("90")
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// splitList reads a comma-separated environment value
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
