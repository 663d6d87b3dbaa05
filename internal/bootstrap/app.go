package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/ecoplot/internal/domain/catalog"
	"github.com/yanqian/ecoplot/internal/infra/config"
)

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	catalog *catalog.Loader
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, loader *catalog.Loader) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, catalog: loader}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Catalog.Preload {
		go a.preloadCatalog(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// preloadCatalog warms the loader. A failure is only logged; requests retry.
func (a *App) preloadCatalog(ctx context.Context) {
	if a.catalog == nil {
		return
	}
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	start := time.Now()
	c, err := a.catalog.Load(loadCtx)
	if err != nil {
		a.logger.Error("catalog preload failed", "error", err)
		return
	}
	a.logger.Info("catalog preloaded", "plants", c.Len(), "duration_ms", time.Since(start).Milliseconds())
}
