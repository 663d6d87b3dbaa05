package plot

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/ecoplot/pkg/errors"
)

// Service exposes plot queries to the transport layer.
type Service interface {
	Parcelles(ctx context.Context) []Parcelle
	Refresh(ctx context.Context) []Parcelle
	Plots(ctx context.Context, userID string) ([]PlotSummary, error)
	Averages(ctx context.Context, userID, plotID string) (PlotSummary, error)
	Locate(ctx context.Context, query string) (Coordinates, error)
}

type service struct {
	store    *Store
	loader   loader
	geocoder Geocoder
	logger   *slog.Logger
}

// NewService wires the plot domain. geocoder may be nil, in which case Locate fails.
func NewService(store *Store, source Source, geocoder Geocoder, logger *slog.Logger) Service {
	logger = logger.With("component", "plot.service")
	return &service{
		store:    store,
		loader:   loader{source: source, logger: logger},
		geocoder: geocoder,
		logger:   logger,
	}
}

func (s *service) Parcelles(ctx context.Context) []Parcelle {
	return s.store.GetAll(ctx)
}

func (s *service) Refresh(ctx context.Context) []Parcelle {
	return s.store.Refresh(ctx)
}

func (s *service) Plots(ctx context.Context, userID string) ([]PlotSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "user id cannot be empty", nil)
	}
	plots, _, err := s.loader.userPlots(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSourceError, "failed to load plots", err)
	}
	out := make([]PlotSummary, 0, len(plots))
	for _, p := range plots {
		out = append(out, PlotSummary{Plot: p, Averages: AverageServices(p)})
	}
	return out, nil
}

func (s *service) Averages(ctx context.Context, userID, plotID string) (PlotSummary, error) {
	plotID = strings.TrimSpace(plotID)
	if plotID == "" {
		return PlotSummary{}, apperrors.Wrap(apperrors.CodeInvalidInput, "plot id cannot be empty", nil)
	}
	summaries, err := s.Plots(ctx, userID)
	if err != nil {
		return PlotSummary{}, err
	}
	for _, summary := range summaries {
		if summary.Plot.ID == plotID {
			return summary, nil
		}
	}
	return PlotSummary{}, apperrors.Wrap(apperrors.CodeNotFound, "plot not found", nil)
}

func (s *service) Locate(ctx context.Context, query string) (Coordinates, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Coordinates{}, apperrors.Wrap(apperrors.CodeInvalidInput, "location query cannot be empty", nil)
	}
	if s.geocoder == nil {
		return Coordinates{}, apperrors.Wrap(apperrors.CodeGeocodeError, "geocoding is not configured", nil)
	}
	results, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		return Coordinates{}, apperrors.Wrap(apperrors.CodeGeocodeError, "geocoding request failed", err)
	}
	if len(results) == 0 {
		return Coordinates{}, apperrors.Wrap(apperrors.CodeNotFound, "no location matches the query", nil)
	}
	s.logger.Debug("location resolved", "query", query, "candidates", len(results))
	return results[0], nil
}
