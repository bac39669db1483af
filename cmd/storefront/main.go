// Package main runs the storefront as a headless HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/weblarek/internal/appstate"
	"github.com/abgdnv/weblarek/internal/config"
	"github.com/abgdnv/weblarek/internal/event"
	"github.com/abgdnv/weblarek/internal/larekapi"
	"github.com/abgdnv/weblarek/internal/platform/logger"
	"github.com/abgdnv/weblarek/internal/presenter"
	"github.com/abgdnv/weblarek/internal/transport/rest"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run wires the event bus, state, presenter and API client, then serves HTTP
// until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load[*config.Config](serviceName)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	appLogger := logger.NewLogger(cfg.Log.Level)
	slog.SetDefault(appLogger)

	bus := event.New(event.WithLogger(appLogger))
	state := appstate.New(bus)
	client := larekapi.NewClient(cfg.API, cfg.CircuitBreaker, appLogger)
	p := presenter.New(bus, state, client, appLogger)
	if err := p.Bind(); err != nil {
		return fmt.Errorf("failed to bind presenter: %w", err)
	}
	defer p.Unbind()

	if cfg.Catalog.LoadOnStart {
		// the service stays up without a catalog; POST /api/v1/catalog/reload retries
		if err := p.LoadCatalog(ctx); err != nil {
			appLogger.Warn("Catalog not loaded on start", "error", err)
		}
	}

	httpServer := rest.NewAPI(bus, state, p, appLogger).NewServer(cfg.HTTPServer)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}
