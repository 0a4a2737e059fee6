package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string
	CatalogPath  string // Optional YAML seed catalog (default: built-in catalog)

	// Model backends
	OpenRouterAPIKey string
	AnthropicAPIKey  string
	GeminiAPIKey     string
	ModelMaxTokens   int
	ModelRetries     int
	ModelRateLimit   float64 // Requests per second across all backends

	// Suggestion engine
	DefaultMode        string
	DefaultDomain      string // Domain name generated posts draw prompts from (default: any)
	SoftmaxTemperature float64
	MaxShortenAttempts int

	// X (Twitter) OAuth2
	XClientID     string
	XClientSecret string
	XRedirectURL  string
	XUsername     string
	TokenDir      string

	// VecLite post history
	VecLitePath        string
	DuplicateThreshold float64

	// Topic sources for serve mode
	TopicsEnabled      bool
	HNMaxStories       int
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	RedditSubreddits   []string
	TopicRefresh       time.Duration

	// Logging
	LogLevel string

	// Scheduler settings
	PostInterval   time.Duration
	MaxPostsPerDay int
	MetricsAddr    string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:     getEnv("DATABASE_PATH", "data/xstudio.db"),
		CatalogPath:      getEnv("CATALOG_PATH", ""),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		DefaultMode:      getEnv("DEFAULT_MODE", "weighted"),
		DefaultDomain:    getEnv("DEFAULT_DOMAIN", ""),
		XClientID:        getEnv("X_CLIENT_ID", ""),
		XClientSecret:    getEnv("X_CLIENT_SECRET", ""),
		XRedirectURL:     getEnv("X_REDIRECT_URL", "http://localhost:5000/oauth/callback"),
		XUsername:        getEnv("X_USERNAME", ""),
		TokenDir:         getEnv("TOKEN_DIR", "data/tokens"),
		VecLitePath:      getEnv("VECLITE_PATH", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsAddr:      getEnv("METRICS_ADDR", ""),

		TopicsEnabled:      getEnv("TOPICS_ENABLED", "true") == "true",
		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "xstudio/1.0"),
		RedditSubreddits:   splitList(getEnv("REDDIT_SUBREDDITS", "")),
	}

	// Parse durations
	var err error
	cfg.PostInterval, err = time.ParseDuration(getEnv("POST_INTERVAL", "4h"))
	if err != nil {
		return nil, fmt.Errorf("invalid POST_INTERVAL: %w", err)
	}
	cfg.TopicRefresh, err = time.ParseDuration(getEnv("TOPIC_REFRESH", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOPIC_REFRESH: %w", err)
	}

	// Parse integers
	ints := []struct {
		key  string
		def  string
		dest *int
	}{
		{"MAX_POSTS_PER_DAY", "6", &cfg.MaxPostsPerDay},
		{"MODEL_MAX_TOKENS", "200", &cfg.ModelMaxTokens},
		{"MODEL_RETRIES", "3", &cfg.ModelRetries},
		{"MAX_SHORTEN_ATTEMPTS", "5", &cfg.MaxShortenAttempts},
		{"HN_MAX_STORIES", "30", &cfg.HNMaxStories},
	}
	for _, i := range ints {
		v, err := strconv.Atoi(getEnv(i.key, i.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", i.key, err)
		}
		*i.dest = v
	}

	// Parse floats
	floats := []struct {
		key  string
		def  string
		dest *float64
	}{
		{"SOFTMAX_TEMPERATURE", "1.0", &cfg.SoftmaxTemperature},
		{"MODEL_RATE_LIMIT", "2", &cfg.ModelRateLimit},
		{"DUPLICATE_THRESHOLD", "0.92", &cfg.DuplicateThreshold},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(getEnv(f.key, f.def), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dest = v
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForGeneration checks configuration needed to call models.
func (c *Config) ValidateForGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.OpenRouterAPIKey == "" && c.AnthropicAPIKey == "" && c.GeminiAPIKey == "" {
		return fmt.Errorf("one of OPENROUTER_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY is required for generation")
	}
	switch c.DefaultMode {
	case "random", "weighted", "highest":
	default:
		return fmt.Errorf("invalid DEFAULT_MODE: %s (must be 'random', 'weighted' or 'highest')", c.DefaultMode)
	}
	if c.SoftmaxTemperature <= 0 {
		return fmt.Errorf("SOFTMAX_TEMPERATURE must be positive")
	}
	if c.MaxShortenAttempts < 1 {
		return fmt.Errorf("MAX_SHORTEN_ATTEMPTS must be at least 1")
	}
	if c.ModelRetries < 0 {
		return fmt.Errorf("MODEL_RETRIES must not be negative")
	}
	return nil
}

// ValidateForPosting checks configuration needed for posting.
func (c *Config) ValidateForPosting() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.XClientID == "" {
		return fmt.Errorf("X_CLIENT_ID is required for posting")
	}
	if c.XUsername == "" {
		return fmt.Errorf("X_USERNAME is required for posting")
	}
	if c.TokenDir == "" {
		return fmt.Errorf("TOKEN_DIR is required for posting")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForGeneration(); err != nil {
		return err
	}
	if err := c.ValidateForPosting(); err != nil {
		return err
	}
	if c.PostInterval <= 0 {
		return fmt.Errorf("POST_INTERVAL must be positive")
	}
	return nil
}

// HasReddit reports whether Reddit app credentials are configured.
func (c *Config) HasReddit() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
