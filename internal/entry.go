// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/converter"
	"github.com/starford/quire/internal/manifest"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/preview"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/watch"
)

func newApplication(opts ...Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if app.logger == nil {
		// Initialize structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}

	cfg := app.config
	app.logger.Info("Configuration loaded",
		slog.String("manuscript_path", cfg.Manuscript.Path),
		slog.String("book_path", cfg.Book.Path),
		slog.Bool("template_enabled", cfg.Template.Enabled),
		slog.String("template_path", cfg.Template.Path),
		slog.Bool("extended", cfg.Render.Extended),
		slog.Bool("manifest_enabled", cfg.Manifest.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return app, nil
}

// Build converts the manuscript directory once.
func Build(ctx context.Context, opts ...Option) (*converter.Result, error) {
	app, err := newApplication(opts...)
	if err != nil {
		return nil, err
	}

	b, err := newBuilder(app.config, app.logger)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	return b.Run(ctx)
}

// Watch builds once, then rebuilds whenever the manuscript directory or the
// template changes, until ctx is cancelled or a shutdown signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}

	b, err := newBuilder(app.config, app.logger)
	if err != nil {
		return err
	}
	defer b.Close()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runWatcher(gCtx, app, b, nil)
	})
	g.Go(func() error {
		return awaitSignal(gCtx, app.logger, nil)
	})

	return wait(g, app.logger)
}

// Serve builds, watches, and serves the book directory over HTTP. Browsers
// subscribed to /events are told to reload after every successful rebuild.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config

	b, err := newBuilder(cfg, app.logger)
	if err != nil {
		return err
	}
	defer b.Close()

	broker := sse.NewBroker(time.Second)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           preview.NewRouter(cfg.Book.Path, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runWatcher(gCtx, app, b, broker)
	})

	g.Go(func() error {
		app.logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return awaitSignal(gCtx, app.logger, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				app.logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		})
	})

	return wait(g, app.logger)
}

// LastBuild returns the most recent manifest entry and its pages.
func LastBuild(opts ...Option) (*models.Build, []models.Page, error) {
	app, err := newApplication(opts...)
	if err != nil {
		return nil, nil, err
	}
	if !app.config.Manifest.Enabled {
		return nil, nil, fmt.Errorf("manifest is disabled")
	}

	db, err := manifest.Open(app.config.Manifest.Path)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	build, err := db.LastBuild()
	if err != nil {
		return nil, nil, err
	}
	pages, err := db.Pages(build.ID)
	if err != nil {
		return nil, nil, err
	}
	return build, pages, nil
}

// runWatcher performs the initial build and then rebuilds on change. Build
// failures are logged and reported to broker (when non-nil) but never stop
// the watch.
func runWatcher(ctx context.Context, app *application, b *builder, broker *sse.Broker) error {
	rebuild := func(ctx context.Context) error {
		res, err := b.Run(ctx)
		if broker != nil {
			broker.PublishBuild(outputNames(res), err)
		}
		return err
	}

	if err := rebuild(ctx); err != nil {
		app.logger.Error("initial build failed", slog.String("error", err.Error()))
	}

	dirs := []string{app.config.Manuscript.Path}
	if app.config.Template.Enabled {
		dirs = append(dirs, filepath.Dir(app.config.Template.Path))
	}
	return watch.Run(ctx, dirs, app.config.Watch.Debounce, app.logger, rebuild)
}

// awaitSignal blocks until SIGINT/SIGTERM or ctx cancellation, then runs
// shutdown (if non-nil). Returning context.Canceled stops sibling goroutines.
func awaitSignal(ctx context.Context, logger *slog.Logger, shutdown func()) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}

	if shutdown != nil {
		shutdown()
	}
	return context.Canceled
}

func wait(g *errgroup.Group, logger *slog.Logger) error {
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Stopped")
	return nil
}
