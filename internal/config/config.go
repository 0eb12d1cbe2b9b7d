package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string `validate:"required,numeric"`
	Debug bool

	// Schedule configuration
	Schedule string // optional cron expression for in-process runs
	TimeZone string `validate:"required"`

	// Outbound request timeouts
	HTTPTimeout   time.Duration `validate:"gt=0"`
	GeminiTimeout time.Duration `validate:"gt=0"`

	// News search configuration
	NewsAPIKey string
	NewsAPIURL string `validate:"required,url"`
	NewsQuery  string `validate:"required"`

	// Social listing configuration
	Subreddits      []string `validate:"min=1,dive,required"`
	RedditBaseURL   string   `validate:"required,url"`
	RedditUserAgent string   `validate:"required"`

	// Summarization configuration
	GeminiAPIKey  string
	GeminiModel   string `validate:"required"`
	GeminiBaseURL string `validate:"required,url"`

	// Notification configuration
	EmailProvider  string `validate:"oneof=resend smtp"`
	EmailFrom      string `validate:"required"`
	RecipientEmail string
	ResendAPIKey   string
	ResendBaseURL  string `validate:"required,url"`
	SMTPHost       string
	SMTPPort       int    `validate:"gt=0"`
	SMTPUsername   string
	SMTPPassword   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Debug:    getBoolEnv("DEBUG", false),
		Schedule: getEnv("SCHEDULE", ""),
		TimeZone: getEnv("TIMEZONE", "Local"),

		HTTPTimeout:   getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		GeminiTimeout: getDurationEnv("GEMINI_TIMEOUT", 60*time.Second),

		NewsAPIKey: getEnv("NEWS_API_KEY", ""),
		NewsAPIURL: getEnv("NEWS_API_URL", "https://newsapi.org/v2"),
		NewsQuery:  getEnv("NEWS_QUERY", "RTD spirits OR energy drink OR wine trends OR beverage industry"),

		Subreddits: getSliceEnv("SUBREDDITS", []string{
			"energydrinks",
			"wine",
			"alcohol",
		}),
		RedditBaseURL:   getEnv("REDDIT_BASE_URL", "https://www.reddit.com"),
		RedditUserAgent: getEnv("REDDIT_USER_AGENT", "SipWatchGemini/1.0"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		EmailProvider:  strings.ToLower(getEnv("EMAIL_PROVIDER", "resend")),
		EmailFrom:      getEnv("EMAIL_FROM", "SipWatch <onboarding@resend.dev>"),
		RecipientEmail: getEnv("RECIPIENT_EMAIL", ""),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		ResendBaseURL:  getEnv("RESEND_BASE_URL", "https://api.resend.com"),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getIntEnv("SMTP_PORT", 587),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a known location: %w", c.TimeZone, err)
	}

	return nil
}

// Location returns the time zone used for report timestamps and schedules
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
