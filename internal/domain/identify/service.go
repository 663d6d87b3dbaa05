package identify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/ecoplot/internal/domain/catalog"
	apperrors "github.com/yanqian/ecoplot/pkg/errors"
)

// Service identifies a plant photo and links it to the catalog.
type Service interface {
	Identify(ctx context.Context, img Image) (Result, error)
}

// Identifier calls the external identification provider.
type Identifier interface {
	Identify(ctx context.Context, img Image) ([]Candidate, error)
}

// CatalogLoader yields the reference catalog.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// Config bounds accepted uploads.
type Config struct {
	MaxImageBytes int64
}

type service struct {
	cfg        Config
	identifier Identifier
	catalog    CatalogLoader
	logger     *slog.Logger
}

// NewService wires the identification domain.
func NewService(cfg Config, identifier Identifier, catalog CatalogLoader, logger *slog.Logger) Service {
	return &service{
		cfg:        cfg,
		identifier: identifier,
		catalog:    catalog,
		logger:     logger.With("component", "identify.service"),
	}
}

func (s *service) Identify(ctx context.Context, img Image) (Result, error) {
	if len(img.Content) == 0 {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "image cannot be empty", nil)
	}
	if s.cfg.MaxImageBytes > 0 && int64(len(img.Content)) > s.cfg.MaxImageBytes {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "image exceeds size limit", nil)
	}
	img.Organ = strings.ToLower(strings.TrimSpace(img.Organ))
	if img.Organ == "" {
		img.Organ = "auto"
	}
	if _, ok := Organs[img.Organ]; !ok {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unsupported organ "+img.Organ, nil)
	}
	if s.identifier == nil {
		return Result{}, apperrors.Wrap(apperrors.CodeIdentifyError, "identification is not configured", nil)
	}

	candidates, err := s.identifier.Identify(ctx, img)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeIdentifyError, "identification request failed", err)
	}
	top, ok := best(candidates)
	if !ok {
		return Result{}, apperrors.Wrap(apperrors.CodeNoMatch, "no species recognised in the image", nil)
	}

	res := Result{ScientificName: top.ScientificName, Score: top.Score}
	c, err := s.catalog.Load(ctx)
	if err != nil {
		// the identification itself is still useful without the catalog join
		s.logger.Warn("catalog unavailable for identification join", "error", err)
		return res, nil
	}
	if rec, found := c.LookupScientific(top.ScientificName); found {
		res.InCatalog = true
		res.Plant = &rec
	}
	s.logger.Info("plant identified", "species", res.ScientificName, "score", res.Score, "in_catalog", res.InCatalog)
	return res, nil
}

// best returns the first candidate with a name; the provider ranks results.
func best(candidates []Candidate) (Candidate, bool) {
	for _, c := range candidates {
		if strings.TrimSpace(c.ScientificName) != "" {
			return c, true
		}
	}
	return Candidate{}, false
}
