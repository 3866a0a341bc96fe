package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/tracked/internal/analyzer"
	"github.com/julianstephens/tracked/internal/cache"
	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/config"
	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/server"
)

type ServeCmd struct {
	Addr    string `help:"Listen address (overrides TRACKED_LISTEN)."`
	Sync    bool   `help:"Return generated insights directly instead of a task id."`
	NoCache bool   `help:"Disable the month view cache."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if ctx.Config == nil {
		return errors.New("configuration not loaded")
	}
	cfg := *ctx.Config
	if c.Addr != "" {
		cfg.ListenAddr = c.Addr
	}
	if c.Sync {
		cfg.AsyncGenerate = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := ctx.LoadStore(); err != nil {
		return err
	}
	defer ctx.Store.Close()
	ctx.PerformAutomaticBackup()

	monthCache, err := newMonthCache(&cfg, c.NoCache)
	if err != nil {
		return err
	}
	defer monthCache.Close()

	an, err := newAnalyzer(ctx.Context(), &cfg)
	if err != nil {
		return err
	}

	if cfg.APIToken == "" {
		logger.Warn("TRACKED_API_TOKEN is not set; the API is unauthenticated")
	}

	srv := server.New(ctx.Store, monthCache, an, server.Options{
		Addr:          cfg.ListenAddr,
		APIToken:      cfg.APIToken,
		Async:         cfg.AsyncGenerate,
		GenerateRate:  cfg.GenerateRate,
		GenerateBurst: cfg.GenerateBurst,
		Location:      ctx.Location(),
	})
	ctx.Printf("tracked %s listening on %s\n", constants.Version, cfg.ListenAddr)
	return srv.Run(ctx.Context())
}

// newMonthCache picks Redis when a URL is configured and memory otherwise.
// A zero TTL memory cache stores nothing.
func newMonthCache(cfg *config.Config, disabled bool) (cache.MonthCache, error) {
	if disabled {
		return cache.NewMemory(0), nil
	}
	if cfg.RedisURL == "" {
		return cache.NewMemory(constants.MonthCacheTTL), nil
	}
	rc, err := cache.NewRedis(cfg.RedisURL, constants.MonthCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to set up month cache: %w", err)
	}
	logger.Info("Using Redis month cache")
	return rc, nil
}

// newAnalyzer uses Gemini when an API key is configured and the local
// statistical analyzer otherwise.
func newAnalyzer(ctx context.Context, cfg *config.Config) (analyzer.Analyzer, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Info("GEMINI_API_KEY not set, using local analyzer")
		return analyzer.NewLocal(), nil
	}
	an, err := analyzer.NewGenAI(ctx, cfg.GeminiAPIKey, cfg.GenAIModel, cfg.GenerateRate, cfg.GenerateBurst)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI analyzer: %w", err)
	}
	return an, nil
}
