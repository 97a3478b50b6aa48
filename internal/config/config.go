// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL string

	// LINE Messaging API
	LineChannelAccessToken string // long-lived channel access token for push messages
	LineChannelSecret      string
	LineNotifyEnabled      bool // master switch for push notifications

	// Form discovery
	DiscoveryTimeout    time.Duration // per-attempt fetch timeout in the proxy chain
	DiscoveryUserAgent  string        // UA presented on the first-party fetch
	ProxyChainEnabled   bool          // allow public CORS proxy fallbacks after direct fetch
	FallbackEntryField  string        // identity entry ID used when discovery fails
	DefaultOGTitle      string
	DefaultOGDesc       string
	DefaultOGImage      string

	// CORS
	CORSOrigins []string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Idle shutdown settings (for scale-to-zero hosting)
	IdleTimeout time.Duration // Time before shutting down when idle (0 = disabled)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:formlink.db?_journal=WAL&_timeout=5000"),

		LineChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),
		LineNotifyEnabled:      getEnvBool("LINE_NOTIFY_ENABLED", true),

		DiscoveryTimeout:   getEnvDuration("DISCOVERY_TIMEOUT", 8*time.Second),
		DiscoveryUserAgent: getEnv("DISCOVERY_USER_AGENT", "Mozilla/5.0"),
		ProxyChainEnabled:  getEnvBool("PROXY_CHAIN_ENABLED", true),
		FallbackEntryField: getEnv("FALLBACK_ENTRY_FIELD", "entry.1795297917"),
		DefaultOGTitle:     getEnv("DEFAULT_OG_TITLE", "公式LINE連携_Googleフォーム"),
		DefaultOGDesc:      getEnv("DEFAULT_OG_DESCRIPTION", "リンクを開くにはこちらをタップ"),
		DefaultOGImage:     getEnv("DEFAULT_OG_IMAGE", "https://example.com/og-image.png"),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		IdleTimeout: getEnvDuration("IDLE_TIMEOUT", 0), // 0 = disabled
	}

	// Push notifications need both channel credentials. Missing credentials
	// with notifications explicitly enabled is a deployment mistake, not a
	// runtime condition to limp through.
	if cfg.LineNotifyEnabled && os.Getenv("LINE_NOTIFY_ENABLED") != "" {
		if cfg.LineChannelAccessToken == "" || cfg.LineChannelSecret == "" {
			return nil, fmt.Errorf("LINE_CHANNEL_ACCESS_TOKEN and LINE_CHANNEL_SECRET are required when LINE_NOTIFY_ENABLED is set")
		}
	}

	if !strings.HasPrefix(cfg.FallbackEntryField, "entry.") {
		return nil, fmt.Errorf("FALLBACK_ENTRY_FIELD must look like entry.<digits>, got %q", cfg.FallbackEntryField)
	}

	return cfg, nil
}

// LineConfigured returns true if LINE push credentials are present.
func (c *Config) LineConfigured() bool {
	return c.LineChannelAccessToken != "" && c.LineChannelSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
