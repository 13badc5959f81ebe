package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Static site root served next to the intake endpoint. Empty
	// disables static serving.
	SiteDir string

	// Lead persistence
	LeadLogPath string
	DatabaseURL string

	// Anti-abuse
	MinFillTime      time.Duration
	RateLimitMax     int
	RateLimitWindow  time.Duration
	RateLimitDir     string
	RateLimitBackend string // "file" or "redis"

	// Redis (rate limiting)
	RedisAddr     string
	RedisPassword string

	// User-facing routes and fallbacks
	ThanksPath    string
	FallbackPhone string

	// Notification email
	NotifyEmail string
	FromEmail   string
	FromName    string

	// SendGrid
	SendGridAPIKey string

	// AWS SES
	SESEnabled         bool
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		SiteDir: getEnv("SITE_DIR", ""),

		LeadLogPath: getEnv("LEAD_LOG_PATH", "data/leads.jsonl"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		MinFillTime:      getEnvAsDuration("MIN_FILL_TIME", 900*time.Millisecond),
		RateLimitMax:     getEnvAsInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow:  getEnvAsDuration("RATE_LIMIT_WINDOW", 10*time.Minute),
		RateLimitDir:     getEnv("RATE_LIMIT_DIR", "data/ratelimit"),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "file"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		ThanksPath:    getEnv("THANKS_PATH", "/thanks.html"),
		FallbackPhone: getEnv("FALLBACK_PHONE", "+7 (911) 271-78-88"),

		NotifyEmail: getEnv("NOTIFY_EMAIL", ""),
		FromEmail:   getEnv("FROM_EMAIL", "no-reply@hs-planet.ru"),
		FromName:    getEnv("FROM_NAME", "Planeta Skin"),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		SESEnabled:         getEnvAsBool("SES_ENABLED", false),
		AWSRegion:          getEnv("AWS_REGION", "eu-central-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
