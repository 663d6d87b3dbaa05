package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ecoplot/internal/domain/catalog"
	"github.com/yanqian/ecoplot/internal/domain/identify"
	"github.com/yanqian/ecoplot/internal/domain/plot"
	"github.com/yanqian/ecoplot/internal/infra/catalogsource"
	"github.com/yanqian/ecoplot/internal/infra/config"
	"github.com/yanqian/ecoplot/internal/infra/nominatim"
	"github.com/yanqian/ecoplot/internal/infra/plantnet"
	"github.com/yanqian/ecoplot/internal/infra/plotsource"
)

func provideCatalogSource(cfg *config.Config, logger *slog.Logger) (catalog.Source, error) {
	obj := cfg.Catalog.Object
	if !obj.Enabled {
		logger.Info("catalog read from local file", "path", cfg.Catalog.Path)
		return catalogsource.NewFileSource(cfg.Catalog.Path), nil
	}
	src, err := catalogsource.NewObjectSource(obj.Endpoint, obj.AccessKey, obj.SecretKey, obj.Bucket, obj.Key, obj.Region, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog read from object storage", "source", src.Describe())
	return src, nil
}

func provideIdentifyConfig(cfg *config.Config) identify.Config {
	return identify.Config{MaxImageBytes: cfg.Identify.MaxImageBytes}
}

func providePlantNetConfig(cfg *config.Config) plantnet.Config {
	return plantnet.Config{
		BaseURL: cfg.Identify.BaseURL,
		APIKey:  cfg.Identify.APIKey,
		Project: cfg.Identify.Project,
		Timeout: cfg.Identify.Timeout,
	}
}

func provideNominatimConfig(cfg *config.Config) nominatim.Config {
	return nominatim.Config{
		BaseURL:   cfg.Geocode.BaseURL,
		UserAgent: cfg.Geocode.UserAgent,
		Timeout:   cfg.Geocode.Timeout,
	}
}

// providePlotSource picks the configured backend, falling back to the
// in-memory source when it cannot be reached.
func providePlotSource(cfg *config.Config, logger *slog.Logger) plot.Source {
	switch cfg.Plots.Source {
	case config.PlotSourcePostgres:
		if src := providePostgresPlotSource(cfg, logger); src != nil {
			return src
		}
	case config.PlotSourceValkey:
		if src := provideValkeyPlotSource(cfg, logger); src != nil {
			return src
		}
	}
	return provideMemoryPlotSource(cfg, logger)
}

func provideMemoryPlotSource(cfg *config.Config, logger *slog.Logger) *plotsource.MemorySource {
	src := plotsource.NewMemorySource()
	path := strings.TrimSpace(cfg.Plots.SeedPath)
	if path == "" {
		logger.Info("plot memory source enabled without seed")
		return src
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open plot seed, starting empty", "path", path, "error", err)
		return src
	}
	defer f.Close()
	if err := src.LoadSeed(f); err != nil {
		logger.Error("failed to load plot seed, starting empty", "path", path, "error", err)
		return plotsource.NewMemorySource()
	}
	logger.Info("plot memory source seeded", "path", path)
	return src
}

func providePostgresPlotSource(cfg *config.Config, logger *slog.Logger) *plotsource.PostgresSource {
	dsn := strings.TrimSpace(cfg.Plots.Postgres.DSN)
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory plot source", "error", err)
		return nil
	}
	if cfg.Plots.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Plots.Postgres.MaxConns
	}
	if cfg.Plots.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Plots.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory plot source", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory plot source", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres plot source enabled")
	return plotsource.NewPostgresSource(pool)
}

func provideValkeyPlotSource(cfg *config.Config, logger *slog.Logger) *plotsource.ValkeySource {
	opt, err := buildValkeyOptions(cfg.Plots.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, using memory plot source", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, using memory plot source", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, using memory plot source", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey plot source enabled", "addr", cfg.Plots.Valkey.Addr)
	return plotsource.NewValkeySource(client, cfg.Plots.Valkey.Prefix)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
