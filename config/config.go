package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every provider credential and model identifier the app needs.
// All values are read once at process start; handlers check the feature they
// need and reject the request instead of crashing when a key is missing.
type Config struct {
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	EventRegistryKey     string
	EventRegistryBaseURL string

	ImageModel string
	ImageSize  string

	LinkedinBaseURL string
	LinkedinVersion string

	InstagramBaseURL string

	// APIHost is the externally reachable base URL of this service; posters
	// use it to hand providers a fetchable URL for stored images.
	APIHost string

	UploadsDir     string
	RequestTimeout time.Duration
	MaxIterations  int
}

const (
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultOpenAIModel    = "gpt-4o"
	defaultERBaseURL      = "https://eventregistry.org/api/v1"
	defaultImageModel     = "gpt-image-1"
	defaultImageSize      = "1024x1024"
	defaultLinkedinURL    = "https://api.linkedin.com"
	defaultLinkedinVer    = "202508" // YYYYMM, LinkedIn versioned REST
	defaultInstagramURL   = "https://graph.facebook.com/v19.0"
	defaultUploadsDir     = "./public/uploads"
	defaultRequestTimeout = 120 * time.Second
	defaultMaxIterations  = 2
)

// Load builds a Config from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getenvDefault("OPENAI_BASE_URL", defaultOpenAIBaseURL),
		OpenAIModel:   getenvDefault("OPENAI_MODEL", defaultOpenAIModel),

		EventRegistryKey: firstEnv("EVENTREGISTRY_API_KEY", "NEWSAPI_KEY", "NEWS_API_KEY"),

		EventRegistryBaseURL: getenvDefault("EVENTREGISTRY_BASE_URL", defaultERBaseURL),

		ImageModel: getenvDefault("IMAGE_MODEL", defaultImageModel),
		ImageSize:  getenvDefault("IMAGE_SIZE", defaultImageSize),

		LinkedinBaseURL: getenvDefault("LINKEDIN_BASE_URL", defaultLinkedinURL),
		LinkedinVersion: getenvDefault("LINKEDIN_VERSION", defaultLinkedinVer),

		InstagramBaseURL: getenvDefault("INSTAGRAM_BASE_URL", defaultInstagramURL),

		APIHost: getenvDefault("API_HOST", "http://localhost:8090"),

		UploadsDir:     getenvDefault("UPLOADS_DIR", defaultUploadsDir),
		RequestTimeout: parseDurationDefault("REQUEST_TIMEOUT", defaultRequestTimeout),
		MaxIterations:  parseIntDefault("MAX_ITERATIONS", defaultMaxIterations),
	}
}

// CheckGeneration reports whether the text generation provider is usable.
func (c *Config) CheckGeneration() error {
	if c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return nil
}

// CheckSearch reports whether the article search provider is usable.
func (c *Config) CheckSearch() error {
	if c.EventRegistryKey == "" {
		return fmt.Errorf("EVENTREGISTRY_API_KEY (or NEWSAPI_KEY/NEWS_API_KEY) is not set")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func parseIntDefault(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func parseDurationDefault(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
