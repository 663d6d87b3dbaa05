package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ecoplot/internal/domain/catalog"
	"github.com/yanqian/ecoplot/internal/domain/identify"
	"github.com/yanqian/ecoplot/internal/domain/plot"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	catalogSvc  catalog.Service
	plotSvc     plot.Service
	identifySvc identify.Service
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(catalogSvc catalog.Service, plotSvc plot.Service, identifySvc identify.Service, logger *slog.Logger) *Handler {
	return &Handler{
		catalogSvc:  catalogSvc,
		plotSvc:     plotSvc,
		identifySvc: identifySvc,
		logger:      logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListCatalog returns every reference plant in file order.
func (h *Handler) ListCatalog(c *gin.Context) {
	records, err := h.catalogSvc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"plants": records, "count": len(records)})
}

// GetPlant looks a plant up by common or scientific name.
func (h *Handler) GetPlant(c *gin.Context) {
	rec, err := h.catalogSvc.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// RankCatalog orders contributing plants by one service.
func (h *Handler) RankCatalog(c *gin.Context) {
	kind := c.Query("service")
	records, err := h.catalogSvc.Rank(c.Request.Context(), kind)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": kind, "plants": records})
}

// Parcelles returns the cross-user map view.
func (h *Handler) Parcelles(c *gin.Context) {
	parcelles := h.plotSvc.Parcelles(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"parcelles": parcelles, "count": len(parcelles)})
}

// RefreshParcelles refetches the map view and returns it.
func (h *Handler) RefreshParcelles(c *gin.Context) {
	parcelles := h.plotSvc.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"parcelles": parcelles, "count": len(parcelles)})
}

// UserPlots lists a user's plots with their service averages.
func (h *Handler) UserPlots(c *gin.Context) {
	plots, err := h.plotSvc.Plots(c.Request.Context(), c.Param("userID"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"plots": plots})
}

// PlotAverages returns one plot's averages.
func (h *Handler) PlotAverages(c *gin.Context) {
	summary, err := h.plotSvc.Averages(c.Request.Context(), c.Param("userID"), c.Param("plotID"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Geocode resolves a free-text location.
func (h *Handler) Geocode(c *gin.Context) {
	coords, err := h.plotSvc.Locate(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, coords)
}

// Identify accepts a multipart photo and returns the recognised species.
func (h *Handler) Identify(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "image_too_large", "image exceeds size limit", err))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "image is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read image", err))
		return
	}

	res, err := h.identifySvc.Identify(c.Request.Context(), identify.Image{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Organ:    strings.TrimSpace(c.PostForm("organ")),
		Content:  data,
	})
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
