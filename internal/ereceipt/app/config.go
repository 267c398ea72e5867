package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer   string // Issuer claim for receipt tokens
	Audience string // Audience claim for receipt tokens

	Keys         string // Comma-separated "kid:secret" pairs; short secrets are skipped
	ActiveKID    string // Optional: overrides "last configured key wins"
	LegacySecret string // Optional: single un-kidded secret, registered as "legacy"

	TokenTTL    time.Duration // How long a receipt token stays valid
	TokenLeeway time.Duration // Clock-skew allowance during validation

	PublicBaseURL string // Base for short URLs, e.g. http://localhost:8080/s
	ViewBaseURL   string // Viewer page the long URL points at

	ReceiptTTL     time.Duration // Receipt lifetime (short link inherits it)
	ReceiptMaxUses int           // Redemptions allowed per receipt

	CodeLength  int           // Short-link code length
	LinkTTL     time.Duration // Default TTL for publicly shortened links
	LinkMaxUses int           // Default usage cap for publicly shortened links
	AnonPerHour int           // Shared hourly budget for public shortening

	AdminKey string // Shared key for the read-only admin views; empty disables
	DemoMode bool   // Echo OTP codes in responses instead of relying on SMS

	DatabaseFile        string        // Path to the SQLite database file
	Env                 string        // Environment (dev, staging, prod)
	LogLevel            string        // debug, info, warn, error
	LogFormat           string        // json, text
	Port                int           // HTTP server port
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout
}

func LoadConfig() Config {
	return Config{
		Issuer:   getEnvOrDefault("ERECEIPT_ISSUER", "ereceipt"),
		Audience: getEnvOrDefault("ERECEIPT_AUDIENCE", "receipt-viewer"),

		Keys:         os.Getenv("ERECEIPT_KEYS"),
		ActiveKID:    os.Getenv("ERECEIPT_ACTIVE_KID"),
		LegacySecret: os.Getenv("ERECEIPT_LEGACY_SECRET"),

		TokenTTL:    getEnvDurationOrDefault("ERECEIPT_TOKEN_TTL", 48*time.Hour),
		TokenLeeway: getEnvDurationOrDefault("ERECEIPT_TOKEN_LEEWAY", 30*time.Second),

		PublicBaseURL: getEnvOrDefault("ERECEIPT_PUBLIC_BASE_URL", "http://localhost:8080/s"),
		ViewBaseURL:   getEnvOrDefault("ERECEIPT_VIEW_BASE_URL", "http://localhost:8080/view.html"),

		ReceiptTTL:     getEnvDurationOrDefault("ERECEIPT_RECEIPT_TTL", 48*time.Hour),
		ReceiptMaxUses: getEnvIntOrDefault("ERECEIPT_RECEIPT_MAX_USES", 3),

		CodeLength:  getEnvIntOrDefault("ERECEIPT_CODE_LENGTH", 7),
		LinkTTL:     getEnvDurationOrDefault("ERECEIPT_LINK_TTL", 24*time.Hour),
		LinkMaxUses: getEnvIntOrDefault("ERECEIPT_LINK_MAX_USES", 100),
		AnonPerHour: getEnvIntOrDefault("ERECEIPT_ANON_PER_HOUR", 120),

		AdminKey: os.Getenv("ERECEIPT_ADMIN_KEY"),
		DemoMode: getEnvBoolOrDefault("ERECEIPT_DEMO_MODE", true),

		DatabaseFile:        getEnvOrDefault("ERECEIPT_DATABASE_FILE", "ereceipt.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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
