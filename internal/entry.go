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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folios/internal/api"
	"github.com/starford/folios/internal/docservice"
	"github.com/starford/folios/internal/index"
	"github.com/starford/folios/internal/mcpserver"
	"github.com/starford/folios/internal/parser"
	"github.com/starford/folios/internal/schema"
	"github.com/starford/folios/internal/sse"
	"github.com/starford/folios/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP stdio mode stdout
	// carries the protocol, so logs go to stderr.
	logDst := os.Stdout
	if app.mcpStdio {
		logDst = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logDst, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("library_path", cfg.Library.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("strict_frontmatter", cfg.Library.StrictFrontmatter),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if info, err := os.Stat(cfg.Library.Path); err != nil || !info.IsDir() {
		return fmt.Errorf("library path %s is not a directory", cfg.Library.Path)
	}

	// Initialize the catalog.
	cat, err := storage.NewFS(cfg.Library.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}

	mode := parser.ModePermissive
	if cfg.Library.StrictFrontmatter {
		mode = parser.ModeStrict
	}
	svc := docservice.NewService(cat, mode)

	// Discover filter values once at startup; the sidecar (if present)
	// pins declared fields and value ordering.
	sidecar, err := schema.LoadSidecar(cfg.Library.Path)
	if err != nil {
		logger.Warn("sidecar load failed", slog.String("error", err.Error()))
	}
	hints := schema.FilterHints(schema.Discover(cat), sidecar)
	if hints != "" {
		logger.Debug("filter hints discovered", slog.String("hints", hints))
	}

	// Optional SQLite search index; advisory only.
	var idx index.DocumentIndex
	if cfg.SQLite.Enabled() {
		db, err := index.Open(cfg.SQLite.Path)
		if err != nil {
			return fmt.Errorf("init index: %w", err)
		}
		defer db.Close()
		idx = db

		if err := index.Sync(db, cat, logger); err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		}
	}

	if app.mcpStdio {
		return runMCP(svc, idx, hints, logger)
	}

	return runHTTP(ctx, cfg, svc, idx, cat, logger)
}

// runMCP serves the MCP tools over stdin/stdout until the client
// disconnects.
func runMCP(svc *docservice.Service, idx index.DocumentIndex, hints string, logger *slog.Logger) error {
	logger.Info("Starting MCP server on stdio")
	srv := mcpserver.New(svc, idx, hints)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func runHTTP(ctx context.Context, cfg *Config, svc *docservice.Service, idx index.DocumentIndex, cat storage.Catalog, logger *slog.Logger) error {
	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, idx, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback (index required).
	if idx != nil {
		g.Go(func() error {
			if err := index.Watch(gCtx, idx, cat, logger, func(kind, name string) {
				broker.PublishDocumentEvent(kind, name)
			}); err != nil {
				logger.Warn("watcher error", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
