package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/abdulachik/xstudio/internal/auth"
	"github.com/abdulachik/xstudio/internal/catalog"
	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/db"
	"github.com/abdulachik/xstudio/internal/llm"
	"github.com/abdulachik/xstudio/internal/poster"
	"github.com/abdulachik/xstudio/internal/suggest"
	"github.com/abdulachik/xstudio/internal/topics"
	"github.com/abdulachik/xstudio/internal/vectorstore"
)

// App is the main application container. The store is opened eagerly;
// model backends, X credentials and post history are built on demand since
// not every command needs them.
type App struct {
	Config *config.Config
	Store  *db.Store

	history *vectorstore.PostHistory
}

// New opens the database and runs migrations.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		Config: cfg,
		Store:  store,
	}, nil
}

// Catalog returns the configured seed catalog, or the built-in one.
func (a *App) Catalog() (*catalog.Catalog, error) {
	if a.Config.CatalogPath != "" {
		return catalog.Load(a.Config.CatalogPath)
	}
	return catalog.Default()
}

// Seed inserts missing catalog entries.
func (a *App) Seed(ctx context.Context) (*catalog.SeedResult, error) {
	c, err := a.Catalog()
	if err != nil {
		return nil, err
	}
	return catalog.Seed(ctx, a.Store, c)
}

// Router builds the model router from whichever API keys are configured.
// Names without a known prefix go to the first configured backend in the
// order openrouter, anthropic, gemini.
func (a *App) Router(ctx context.Context) (*llm.Router, error) {
	cfg := a.Config
	backends := make(map[string]llm.Backend)
	fallback := ""

	if cfg.OpenRouterAPIKey != "" {
		backends["openrouter"] = llm.NewOpenRouterClient(llm.OpenRouterConfig{
			APIKey:    cfg.OpenRouterAPIKey,
			MaxTokens: cfg.ModelMaxTokens,
		})
		fallback = "openrouter"
	}

	if cfg.AnthropicAPIKey != "" {
		backends["anthropic"] = llm.NewAnthropicClient(llm.AnthropicConfig{
			APIKey:    cfg.AnthropicAPIKey,
			MaxTokens: cfg.ModelMaxTokens,
		})
		if fallback == "" {
			fallback = "anthropic"
		}
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			MaxTokens: cfg.ModelMaxTokens,
		})
		if err != nil {
			return nil, err
		}
		backends["gemini"] = gemini
		if fallback == "" {
			fallback = "gemini"
		}
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no model backend configured")
	}

	return llm.NewRouter(llm.RouterConfig{
		Backends:  backends,
		Fallback:  fallback,
		RateLimit: cfg.ModelRateLimit,
		Retries:   cfg.ModelRetries,
	}), nil
}

// Suggest builds the suggestion service.
func (a *App) Suggest(ctx context.Context) (*suggest.Service, error) {
	router, err := a.Router(ctx)
	if err != nil {
		return nil, err
	}

	return suggest.New(suggest.Config{
		Store:              a.Store,
		Invoker:            router,
		Words:              suggest.NewNounSource(nil),
		Temperature:        a.Config.SoftmaxTemperature,
		MaxShortenAttempts: a.Config.MaxShortenAttempts,
	}), nil
}

// DefaultDomainID resolves DEFAULT_DOMAIN to a domain id. Zero means any
// domain.
func (a *App) DefaultDomainID(ctx context.Context) (int64, error) {
	name := a.Config.DefaultDomain
	if name == "" {
		return 0, nil
	}

	d, err := a.Store.GetDomainByName(ctx, name)
	if db.IsNotFound(err) {
		return 0, fmt.Errorf("DEFAULT_DOMAIN %q: %w", name, db.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get domain %s: %w", name, err)
	}
	return d.ID, nil
}

// OAuth returns the X OAuth2 client configuration.
func (a *App) OAuth() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     a.Config.XClientID,
		ClientSecret: a.Config.XClientSecret,
		RedirectURL:  a.Config.XRedirectURL,
	})
}

// TokenStore returns the per-user token store.
func (a *App) TokenStore() *auth.TokenStore {
	return auth.NewTokenStore(a.Config.TokenDir)
}

// Tokens returns a refreshing token source for the configured X user.
func (a *App) Tokens(ctx context.Context) (oauth2.TokenSource, error) {
	return auth.TokenSource(ctx, a.OAuth(), a.TokenStore(), a.Config.XUsername)
}

// Publisher builds the X publisher. When VECLITE_PATH is set the publisher
// also refuses near-duplicates of earlier posts; a history that fails to
// open is logged and skipped.
func (a *App) Publisher() *poster.Publisher {
	cfg := poster.PublisherConfig{
		Poster:    poster.NewXPoster(poster.XConfig{}),
		Store:     a.Store,
		MaxPerDay: a.Config.MaxPostsPerDay,
	}

	if a.Config.VecLitePath != "" && a.history == nil {
		history, err := vectorstore.New(vectorstore.Config{
			Path:      a.Config.VecLitePath,
			Threshold: float32(a.Config.DuplicateThreshold),
		})
		if err != nil {
			slog.Error("failed to open post history, duplicate check disabled", "error", err)
		} else {
			a.history = history
		}
	}
	if a.history != nil {
		cfg.Guard = a.history
	}

	return poster.NewPublisher(cfg)
}

// Topics builds the headline pool used as context in serve mode.
func (a *App) Topics() *topics.Pool {
	cfg := a.Config
	sources := []topics.Source{
		topics.NewHackerNews(topics.HackerNewsConfig{MaxStories: cfg.HNMaxStories}),
	}

	if cfg.HasReddit() {
		sources = append(sources, topics.NewReddit(topics.RedditConfig{
			ClientID:     cfg.RedditClientID,
			ClientSecret: cfg.RedditClientSecret,
			UserAgent:    cfg.RedditUserAgent,
			Subreddits:   cfg.RedditSubreddits,
		}))
	}

	return topics.NewPool(topics.PoolConfig{
		Sources:  sources,
		Fallback: suggest.NewNounSource(nil),
	})
}

// Close closes all resources.
func (a *App) Close() error {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			slog.Warn("failed to close post history", "error", err)
		}
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
