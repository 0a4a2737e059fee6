package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env and restore after test
	origEnv := os.Environ()
	t.Cleanup(func() {
		os.Clearenv()
		for _, e := range origEnv {
			for i := 0; i < len(e); i++ {
				if e[i] == '=' {
					os.Setenv(e[:i], e[i+1:])
					break
				}
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		os.Clearenv()
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "data/xstudio.db", cfg.DatabasePath)
		assert.Equal(t, "weighted", cfg.DefaultMode)
		assert.Empty(t, cfg.DefaultDomain)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 4*time.Hour, cfg.PostInterval)
		assert.Equal(t, 6, cfg.MaxPostsPerDay)
		assert.Equal(t, 200, cfg.ModelMaxTokens)
		assert.Equal(t, 3, cfg.ModelRetries)
		assert.Equal(t, 5, cfg.MaxShortenAttempts)
		assert.InDelta(t, 1.0, cfg.SoftmaxTemperature, 1e-9)
		assert.Equal(t, "data/tokens", cfg.TokenDir)
		assert.True(t, cfg.TopicsEnabled)
		assert.Equal(t, 30, cfg.HNMaxStories)
		assert.Equal(t, time.Hour, cfg.TopicRefresh)
		assert.Empty(t, cfg.RedditSubreddits)
		assert.False(t, cfg.HasReddit())
	})

	t.Run("topic sources", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("TOPICS_ENABLED", "false")
		os.Setenv("REDDIT_CLIENT_ID", "id")
		os.Setenv("REDDIT_CLIENT_SECRET", "secret")
		os.Setenv("REDDIT_SUBREDDITS", "poetry, ,writing")

		cfg, err := Load()
		require.NoError(t, err)

		assert.False(t, cfg.TopicsEnabled)
		assert.True(t, cfg.HasReddit())
		assert.Equal(t, []string{"poetry", "writing"}, cfg.RedditSubreddits)
	})

	t.Run("custom values", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DATABASE_PATH", "/custom/path.db")
		os.Setenv("OPENROUTER_API_KEY", "or-test")
		os.Setenv("X_USERNAME", "poet")
		os.Setenv("POST_INTERVAL", "1h")
		os.Setenv("MAX_SHORTEN_ATTEMPTS", "2")
		os.Setenv("SOFTMAX_TEMPERATURE", "0.5")
		os.Setenv("DEFAULT_DOMAIN", "Travel")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "/custom/path.db", cfg.DatabasePath)
		assert.Equal(t, "or-test", cfg.OpenRouterAPIKey)
		assert.Equal(t, "poet", cfg.XUsername)
		assert.Equal(t, time.Hour, cfg.PostInterval)
		assert.Equal(t, 2, cfg.MaxShortenAttempts)
		assert.InDelta(t, 0.5, cfg.SoftmaxTemperature, 1e-9)
		assert.Equal(t, "Travel", cfg.DefaultDomain)
	})

	t.Run("invalid duration", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("POST_INTERVAL", "invalid")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "POST_INTERVAL")
	})

	t.Run("invalid integer", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("MAX_POSTS_PER_DAY", "notanumber")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "MAX_POSTS_PER_DAY")
	})

	t.Run("invalid float", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("SOFTMAX_TEMPERATURE", "warm")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SOFTMAX_TEMPERATURE")
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := &Config{DatabasePath: "test.db"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing database path", func(t *testing.T) {
		cfg := &Config{}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_PATH")
	})
}

func TestConfig_ValidateForGeneration(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabasePath:       "test.db",
			GeminiAPIKey:       "g-test",
			DefaultMode:        "weighted",
			SoftmaxTemperature: 1,
			MaxShortenAttempts: 5,
			ModelRetries:       3,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().ValidateForGeneration())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing api keys", func(c *Config) { c.GeminiAPIKey = "" }, "OPENROUTER_API_KEY"},
		{"bad mode", func(c *Config) { c.DefaultMode = "best" }, "DEFAULT_MODE"},
		{"zero temperature", func(c *Config) { c.SoftmaxTemperature = 0 }, "SOFTMAX_TEMPERATURE"},
		{"no shorten attempts", func(c *Config) { c.MaxShortenAttempts = 0 }, "MAX_SHORTEN_ATTEMPTS"},
		{"negative retries", func(c *Config) { c.ModelRetries = -1 }, "MODEL_RETRIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.ValidateForGeneration()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_ValidateForPosting(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := &Config{
			DatabasePath: "test.db",
			XClientID:    "client",
			XUsername:    "poet",
			TokenDir:     "tokens",
		}
		assert.NoError(t, cfg.ValidateForPosting())
	})

	t.Run("missing client id", func(t *testing.T) {
		cfg := &Config{
			DatabasePath: "test.db",
			XUsername:    "poet",
			TokenDir:     "tokens",
		}
		err := cfg.ValidateForPosting()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "X_CLIENT_ID")
	})

	t.Run("missing username", func(t *testing.T) {
		cfg := &Config{
			DatabasePath: "test.db",
			XClientID:    "client",
			TokenDir:     "tokens",
		}
		err := cfg.ValidateForPosting()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "X_USERNAME")
	})
}

func TestConfig_ValidateForServe(t *testing.T) {
	cfg := &Config{
		DatabasePath:       "test.db",
		OpenRouterAPIKey:   "or-test",
		DefaultMode:        "weighted",
		SoftmaxTemperature: 1,
		MaxShortenAttempts: 5,
		XClientID:          "client",
		XUsername:          "poet",
		TokenDir:           "tokens",
		PostInterval:       time.Hour,
	}
	assert.NoError(t, cfg.ValidateForServe())

	cfg.PostInterval = 0
	err := cfg.ValidateForServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POST_INTERVAL")
}
