package app

import (
	"os"
	"strconv"
	"time"

	"github.com/quizdeck/quizdeck/pkg/jwtx"
)

type Config struct {
	Issuer    string        // Issuer claim for access tokens (default: quizdeck)
	AccessTTL time.Duration // Access token lifetime (default: 30m)

	DatabaseFile string // Path to SQLite database file (default: ./quizdeck.db)
	PepperFile   string // Path to password-hashing pepper file (default: ./pepper)

	SendGridAPIKey string // Optional: email delivery is log-only when unset
	MailFromName   string // Sender display name
	MailFromEmail  string // Sender address

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // json, text (default: json)

	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-record cleanup interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:    getEnvOrDefault("QUIZDECK_ISSUER", "quizdeck"),
		AccessTTL: getEnvDurationOrDefault("QUIZDECK_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),

		DatabaseFile: getEnvOrDefault("QUIZDECK_DATABASE_FILE", "quizdeck.db"),
		PepperFile:   getEnvOrDefault("QUIZDECK_PEPPER_FILE", "pepper"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFromName:   getEnvOrDefault("MAIL_FROM_NAME", "QuizDeck"),
		MailFromEmail:  getEnvOrDefault("MAIL_FROM_EMAIL", "no-reply@quizdeck.local"),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
