package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/ecoplot/internal/domain/plant"
	"github.com/yanqian/ecoplot/internal/domain/plot"
	apperrors "github.com/yanqian/ecoplot/pkg/errors"
)

// Service exposes catalog queries to the transport layer.
type Service interface {
	List(ctx context.Context) ([]plant.Record, error)
	Get(ctx context.Context, name string) (plant.Record, error)
	Rank(ctx context.Context, service string) ([]plant.Record, error)
}

type service struct {
	loader *Loader
	logger *slog.Logger
}

// NewService wires the catalog domain.
func NewService(loader *Loader, logger *slog.Logger) Service {
	return &service{
		loader: loader,
		logger: logger.With("component", "catalog.service"),
	}
}

func (s *service) List(ctx context.Context) ([]plant.Record, error) {
	c, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return c.Records(), nil
}

func (s *service) Get(ctx context.Context, name string) (plant.Record, error) {
	if strings.TrimSpace(name) == "" {
		return plant.Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "name cannot be empty", nil)
	}
	c, err := s.loader.Load(ctx)
	if err != nil {
		return plant.Record{}, err
	}
	if rec, ok := c.Lookup(name); ok {
		return rec, nil
	}
	if rec, ok := c.LookupScientific(name); ok {
		return rec, nil
	}
	return plant.Record{}, apperrors.Wrap(apperrors.CodeNotFound, "species not found in catalog", nil)
}

func (s *service) Rank(ctx context.Context, service string) ([]plant.Record, error) {
	kind, ok := plant.ParseServiceKindName(service)
	if !ok {
		return nil, apperrors.Wrap(apperrors.CodeInvalidServiceKind, "unknown service "+strings.TrimSpace(service), nil)
	}
	c, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	ranked, err := plot.RankByService(c.Records(), kind)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog ranked", "service", kind.Tag(), "results", len(ranked))
	return ranked, nil
}
