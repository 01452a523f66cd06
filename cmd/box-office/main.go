package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/terra-clan/box-office/internal/api"
	"github.com/terra-clan/box-office/internal/catalog"
	"github.com/terra-clan/box-office/internal/config"
	"github.com/terra-clan/box-office/internal/health"
	"github.com/terra-clan/box-office/internal/loader"
	"github.com/terra-clan/box-office/internal/render"
	"github.com/terra-clan/box-office/internal/sources"
	"github.com/terra-clan/box-office/internal/storage"
)

func main() {
	// Optional .env for local runs
	_ = godotenv.Load()

	// Setup structured logging
	setupLogger(slog.LevelInfo)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	setupLogger(level)

	slog.Info("starting box-office",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"source", cfg.Catalog.Source,
		"default_category", cfg.Catalog.DefaultCategory,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), cfg.Catalog.LoadTimeout+30*time.Second)
	defer initCancel()

	// Database schema and optional seed
	if cfg.Database.DSN != "" {
		if err := prepareDatabase(initCtx, cfg.Database); err != nil {
			slog.Error("failed to prepare database", "error", err)
			os.Exit(1)
		}
	}

	// Initialize data source
	source, closer, err := newSource(initCtx, cfg)
	if err != nil {
		slog.Error("failed to create catalog source", "source", cfg.Catalog.Source, "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	registry := sources.NewRegistry()
	registry.Register(source.Type(), source)
	slog.Info("catalog sources registered", "sources", registry.List())

	// One-shot load; a failure leaves an empty catalog and the server still starts
	catalogLoader := loader.NewLoader(source, cfg.Catalog.LoadTimeout)
	store := catalog.NewStore(catalogLoader.Load(initCtx))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start source health monitor
	monitor := health.NewMonitor(registry, cfg.Catalog.HealthInterval)
	monitor.Start(ctx)

	// Start file watcher
	var watcher *loader.Watcher
	if file, ok := source.(*sources.FileSource); ok && cfg.Catalog.Watch {
		watcher = loader.NewWatcher(catalogLoader, store, file.Path(), cfg.Catalog.WatchDebounce)
		if err := watcher.Start(ctx); err != nil {
			slog.Warn("catalog watcher disabled", "error", err)
			watcher = nil
		}
	}

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		slog.Error("failed to create renderer", "error", err)
		os.Exit(1)
	}

	engine := catalog.NewEngine(catalog.EngineOptions{
		AcclaimedTag:     cfg.Catalog.AcclaimedTag,
		NotoriousLossTag: cfg.Catalog.NotoriousLossTag,
	})

	// Setup HTTP server
	server := api.NewServer(cfg.Server, store, engine, renderer, monitor, cfg.Catalog.DefaultCategory)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()
	if watcher != nil {
		watcher.Wait()
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("box-office stopped")
}

func setupLogger(level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// newSource builds the configured data source. The closer is nil for
// sources that hold no connection.
func newSource(ctx context.Context, cfg *config.Config) (sources.Source, io.Closer, error) {
	switch cfg.Catalog.Source {
	case config.SourceFile:
		src, err := sources.NewFileSource(cfg.Catalog.Path)
		return src, nil, err

	case config.SourceHTTP:
		return sources.NewHTTPSource(cfg.Catalog.URL, cfg.Catalog.LoadTimeout), nil, nil

	case config.SourceRedis:
		src, err := sources.NewRedisSource(ctx, sources.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil

	case config.SourcePostgres:
		src, err := sources.NewPostgresSource(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

// prepareDatabase runs migrations and, when a seed file is configured,
// replaces the movies table with its content
func prepareDatabase(ctx context.Context, cfg config.DatabaseConfig) error {
	slog.Info("running database migrations", "dir", cfg.MigrationsDir)
	if err := storage.MigrateFromDSN(ctx, cfg.DSN, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if cfg.SeedPath == "" {
		return nil
	}

	seed, err := sources.NewFileSource(cfg.SeedPath)
	if err != nil {
		return err
	}
	slog.Info("seeding database", "path", seed.Path())

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{DSN: cfg.DSN})
	if err != nil {
		return err
	}
	defer repo.Close()

	return seedMovies(ctx, repo, seed)
}

// seedMovies replaces the stored catalog with every record of seed
func seedMovies(ctx context.Context, repo storage.Repository, seed sources.Source) error {
	records, err := seed.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	if err := repo.ReplaceMovies(ctx, records); err != nil {
		return fmt.Errorf("failed to seed movies: %w", err)
	}

	count, err := repo.CountMovies(ctx)
	if err != nil {
		return err
	}
	slog.Info("database seeded", "source", seed.Type(), "movies", count)
	return nil
}
