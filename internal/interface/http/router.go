package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ecoplot/internal/infra/config"
	"github.com/yanqian/ecoplot/internal/infra/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// collector may be nil, in which case no metrics route is mounted.
func NewRouter(cfg *config.Config, handler *Handler, collector *metrics.Collector) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)
	if cfg.Metrics.Enabled && collector != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
	}

	throttled := rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger)

	api := router.Group("/api/v1")
	{
		api.GET("/catalog", handler.ListCatalog)
		api.GET("/catalog/ranking", handler.RankCatalog)
		api.GET("/catalog/:name", handler.GetPlant)

		api.GET("/parcelles", handler.Parcelles)
		api.POST("/parcelles/refresh", refreshGuard(cfg.Auth.RefreshSecret), handler.RefreshParcelles)

		api.GET("/users/:userID/plots", handler.UserPlots)
		api.GET("/users/:userID/plots/:plotID/averages", handler.PlotAverages)

		api.GET("/geocode", throttled, handler.Geocode)
		api.POST("/identify", throttled, bodyLimit(cfg.Identify.MaxImageBytes), handler.Identify)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
