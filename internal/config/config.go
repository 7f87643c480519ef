package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port int `validate:"min=1,max=65535"` // HTTP server port

	// Snapshot sources
	FetchTimeout     time.Duration `validate:"min=1ms"` // Per-fetch timeout for plain HTTP snapshots
	BrowserTimeout   time.Duration `validate:"min=1ms"` // Per-render timeout for browser snapshots
	MaxRedirects     int           `validate:"min=0,max=20"`
	MaxBodyBytes     int64         `validate:"min=1024"` // Page bytes kept for parsing
	DefaultUserAgent string        `validate:"required"`
	UseBrowser       bool          // Render pages in headless Chrome instead of fetching them
	BrowserPoolSize  int           `validate:"min=1,max=32"`

	// Analysis
	CacheSize          int      `validate:"min=0"` // Memoized results kept; 0 disables the memo
	RestrictedPrefixes []string // Appended to the built-in restricted prefixes
	CatalogPath        string   // Optional YAML replacing the embedded reference tables
}

// Load reads configuration from environment variables
// and returns a Config struct with defaults applied
func Load() *Config {
	return &Config{
		Port:               getEnvAsInt("PORT", 8080),
		FetchTimeout:       getEnvAsDuration("FETCH_TIMEOUT", 5000*time.Millisecond),
		BrowserTimeout:     getEnvAsDuration("BROWSER_TIMEOUT", 15000*time.Millisecond),
		MaxRedirects:       getEnvAsInt("MAX_REDIRECTS", 5),
		MaxBodyBytes:       int64(getEnvAsInt("MAX_BODY_BYTES", 5<<20)),
		DefaultUserAgent:   getEnv("DEFAULT_USER_AGENT", "privacy-parrot/1.0"),
		UseBrowser:         getEnvAsBool("USE_BROWSER", false),
		BrowserPoolSize:    getEnvAsInt("BROWSER_POOL_SIZE", 2),
		CacheSize:          getEnvAsInt("CACHE_SIZE", 256),
		RestrictedPrefixes: getEnvAsList("RESTRICTED_PREFIXES"),
		CatalogPath:        getEnv("CATALOG_PATH", ""),
	}
}

// LoadDotEnv reads a .env file into the environment when one exists.
// Variables already set win over the file.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Validate checks the configuration ranges
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as an integer
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList reads a comma separated list, dropping blank items
func getEnvAsList(key string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getEnvAsDuration reads an environment variable as milliseconds and converts to time.Duration
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	ms, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return time.Duration(ms) * time.Millisecond
}
