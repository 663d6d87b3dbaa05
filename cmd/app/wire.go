//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/ecoplot/internal/bootstrap"
	"github.com/yanqian/ecoplot/internal/domain/catalog"
	"github.com/yanqian/ecoplot/internal/domain/identify"
	"github.com/yanqian/ecoplot/internal/domain/plot"
	"github.com/yanqian/ecoplot/internal/infra/config"
	"github.com/yanqian/ecoplot/internal/infra/metrics"
	"github.com/yanqian/ecoplot/internal/infra/nominatim"
	"github.com/yanqian/ecoplot/internal/infra/plantnet"
	httpiface "github.com/yanqian/ecoplot/internal/interface/http"
	"github.com/yanqian/ecoplot/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideCatalogSource,
		provideIdentifyConfig,
		providePlantNetConfig,
		provideNominatimConfig,
		providePlotSource,
		metrics.NewCollector,
		catalog.NewLoader,
		catalog.NewService,
		plot.NewStore,
		plot.NewService,
		plantnet.NewClient,
		nominatim.NewClient,
		identify.NewService,
		wire.Bind(new(plot.Observer), new(*metrics.Collector)),
		wire.Bind(new(plot.Geocoder), new(*nominatim.Client)),
		wire.Bind(new(identify.Identifier), new(*plantnet.Client)),
		wire.Bind(new(identify.CatalogLoader), new(*catalog.Loader)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
