// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/api"
	"github.com/jagriti-dev/casesearch/internal/caseparse"
	"github.com/jagriti-dev/casesearch/internal/config"
	"github.com/jagriti-dev/casesearch/internal/jurisdiction"
	"github.com/jagriti-dev/casesearch/internal/logging"
	"github.com/jagriti-dev/casesearch/internal/metrics"
	"github.com/jagriti-dev/casesearch/internal/pipeline"
	"github.com/jagriti-dev/casesearch/internal/portal"
	"github.com/jagriti-dev/casesearch/internal/searchform"
)

// App holds the shared, long-lived services for the case-search process:
// one portal client, one jurisdiction directory with its caches, one search
// pipeline, and the API server in front of them.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	directory *jurisdiction.Directory
	pipeline  *pipeline.Pipeline
	server    *http.Server
}

// NewApp creates and wires every service from configuration. It fails fast
// on invalid configuration; the portal itself is not contacted yet.
func NewApp(_ context.Context) (*App, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.L
	if built, buildErr := logging.New(cfg.Logging.Development); buildErr == nil {
		logger = built
		logging.L = logger
	}
	metrics.Init()

	client := portal.NewClient(portal.ClientConfig{
		UserAgent:       cfg.HTTP.UserAgent,
		Timeout:         cfg.HTTP.RequestTimeout,
		MaxRetries:      cfg.HTTP.MaxRetries,
		BaseRetryDelay:  cfg.HTTP.BaseRetryDelay,
		MaxConns:        cfg.HTTP.MaxConns,
		MaxConnsPerHost: cfg.HTTP.MaxConnsPerHost,
	}, logger)

	sentinel := portal.NewSentinel(cfg.Challenge.Markers)

	directory := jurisdiction.New(client, sentinel, jurisdiction.Config{
		SearchURL:           cfg.Portal.SearchURL,
		CourtType:           cfg.Portal.CourtType,
		StateSelectors:      cfg.Selectors.State,
		CommissionSelectors: cfg.Selectors.Commission,
	}, logger)

	emulator := searchform.New(client, searchform.Config{
		BaseURL:    cfg.Portal.BaseURL,
		SearchURL:  cfg.Portal.SearchURL,
		CourtType:  cfg.Portal.CourtType,
		OrderType:  cfg.Portal.OrderType,
		DateFilter: cfg.Portal.DateFilter,
	}, logger)

	parser := caseparse.New(caseparse.Config{
		BaseURL:        cfg.Portal.BaseURL,
		TableSelectors: cfg.Selectors.ResultsTable,
	}, logger)

	searchPipeline := pipeline.New(directory, emulator, parser, sentinel, logger)
	server := api.NewServer(searchPipeline, cfg, logger)

	return &App{
		cfg:       cfg,
		logger:    logger,
		directory: directory,
		pipeline:  searchPipeline,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run starts the API server and blocks until ctx finishes or the listener
// fails. When configured, the state cache is warmed in the background;
// a warm-up failure is logged but not fatal since the directory loads
// lazily on first request anyway.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Server.PreloadStates {
		go a.preloadStates(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("API server listening", zap.String("addr", a.server.Addr))
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

func (a *App) preloadStates(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	states, err := a.directory.ListStates(warmCtx)
	if err != nil {
		a.logger.Warn("state cache warm-up failed; will load lazily", zap.Error(err))
		return
	}
	a.logger.Info("state cache warmed", zap.Int("states", len(states)))
}

// Close flushes the logger. The portal client's idle connections die with
// the process.
func (a *App) Close() {
	if err := a.logger.Sync(); err != nil {
		a.logger.Warn("error syncing logger on shutdown", zap.Error(err))
	}
}
