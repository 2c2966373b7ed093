package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"TechPortfolio/internal/api"
	"TechPortfolio/internal/config"
	"TechPortfolio/internal/infrastructure/parser"
	"TechPortfolio/internal/infrastructure/scheduler"
	"TechPortfolio/internal/infrastructure/storage"
	"TechPortfolio/internal/infrastructure/telegram"
	"TechPortfolio/internal/logging"
	"TechPortfolio/internal/ports"
	"TechPortfolio/internal/scanner"
	"TechPortfolio/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	repo        *storage.Repository
	recommender *usecase.Recommender
	importer    *usecase.Importer
	homepage    *usecase.Feed
}

// New opens storage and builds every use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	repo, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	return build(cfg, repo, baseLogger), nil
}

func build(cfg config.Config, repo *storage.Repository, baseLogger *slog.Logger) *Application {
	registry := scanner.NewRegistry()
	registry.Register(parser.NewListingScanner(
		&http.Client{Timeout: 20 * time.Second},
		baseLogger.With("component", "scanner.listing"),
	))
	listings := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram, nil)
	}

	pool := storage.NewBreakerSource(repo, cfg.Breaker, baseLogger.With("component", "breaker"))

	recommender := usecase.NewRecommender(usecase.RecommenderDeps{
		Source: pool,
		Rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Logger: baseLogger.With("component", "recommender"),
	})

	importer := usecase.NewImporter(usecase.ImporterDeps{
		Source:     listings,
		Repository: repo,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "importer"),
		Publish:    cfg.Importer.PublishImported(),
	})

	return &Application{
		cfg:         cfg,
		logger:      baseLogger,
		repo:        repo,
		recommender: recommender,
		importer:    importer,
		homepage:    usecase.NewFeed(recommender, baseLogger.With("component", "homepage")),
	}
}

// Serve runs the HTTP API, the homepage refresher and the import scheduler until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	driver := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Location(),
		scheduler.WithLogger(a.logger.With("component", "scheduler")),
	)
	imports := usecase.NewImportScheduler(driver, a.importer)
	if err := imports.Start(ctx); err != nil {
		return fmt.Errorf("start import scheduler: %w", err)
	}
	defer func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
		defer stop()
		if err := imports.Stop(stopCtx); err != nil {
			a.logger.Warn("stop import scheduler", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.homepage.Set(ctx, usecase.Query{Limit: a.cfg.Recommend.MaxLimit})
		a.homepage.Poll(ctx, a.cfg.Recommend.HomepageRefresh)
	}()
	defer wg.Wait()

	router := api.NewRouter(api.Deps{
		Catalogue:   a.repo,
		Recommender: a.recommender,
		Homepage:    a.homepage,
		Server:      a.cfg.Server,
		Recommend:   a.cfg.Recommend,
		Logger:      a.logger.With("component", "api"),
	})

	a.logger.Info("service starting", "addr", a.cfg.Server.Addr, "database", a.cfg.Database.Driver, "import_schedule", a.cfg.Scheduler.String())
	err := api.NewServer(a.cfg.Server, router, a.logger.With("component", "http")).Run(ctx)
	cancel()
	return err
}

// ImportOnce performs a single import run.
func (a *Application) ImportOnce(ctx context.Context) (usecase.ImportReport, error) {
	return a.importer.ImportOnce(ctx, time.Now().In(a.cfg.Scheduler.Location()))
}

// Recommend resolves id in the published pool and returns its recommendations.
func (a *Application) Recommend(ctx context.Context, id string, limit int) (usecase.Selection, error) {
	if limit <= 0 {
		limit = a.cfg.Recommend.DefaultLimit
	}
	return a.recommender.ForItemID(ctx, id, limit)
}

// Close releases storage.
func (a *Application) Close() error {
	return a.repo.Close()
}
