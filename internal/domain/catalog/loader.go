package catalog

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/yanqian/ecoplot/pkg/errors"
)

// Source opens the reference dataset stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Describe() string
}

// Loader parses the dataset at most once and hands every caller the same Catalog.
type Loader struct {
	source Source
	logger *slog.Logger

	mu      sync.RWMutex
	catalog *Catalog
}

// NewLoader constructs a Loader over source.
func NewLoader(source Source, logger *slog.Logger) *Loader {
	return &Loader{
		source: source,
		logger: logger.With("component", "catalog.loader"),
	}
}

// Load returns the memoized catalog, parsing it on first use. A failed load
// publishes nothing and the next call tries again.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	l.mu.RLock()
	loaded := l.catalog
	l.mu.RUnlock()
	if loaded != nil {
		return loaded, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.catalog != nil {
		return l.catalog, nil
	}

	start := time.Now()
	rc, err := l.source.Open(ctx)
	if err != nil {
		l.logger.Error("catalog source open failed", "source", l.source.Describe(), "error", err)
		return nil, apperrors.Wrap(apperrors.CodeCatalogUnavailable, "failed to open catalog source", err)
	}
	defer rc.Close()

	parsed, err := Parse(rc)
	if err != nil {
		l.logger.Error("catalog parse failed", "source", l.source.Describe(), "error", err)
		return nil, apperrors.Wrap(apperrors.CodeCatalogUnavailable, "failed to parse catalog", err)
	}
	l.catalog = parsed
	l.logger.Info("catalog loaded", "source", l.source.Describe(), "species", parsed.Len(), "latency_ms", time.Since(start).Milliseconds())
	return parsed, nil
}

// Loaded reports whether the catalog has been published.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog != nil
}
