package plot

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	opGetAll  = "get_all"
	opRefresh = "refresh"
)

// Store caches the cross-user map view. Every fetch runs under mu, so at
// most one fetch is in flight and readers never see a half-built list.
type Store struct {
	loader   loader
	observer Observer
	logger   *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	cached      []Parcelle
	initialized bool
}

// NewStore constructs a Store over source. observer may be nil.
func NewStore(source Source, observer Observer, logger *slog.Logger) *Store {
	if observer == nil {
		observer = noopObserver{}
	}
	logger = logger.With("component", "plot.store")
	return &Store{
		loader:   loader{source: source, logger: logger},
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// GetAll returns the cached view, fetching it on first use. A failed fetch
// yields an empty list and is retried on the next call.
func (s *Store) GetAll(ctx context.Context) []Parcelle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return cloneParcelles(s.cached)
	}
	parcelles, ok := s.fetchLocked(ctx, opGetAll)
	if !ok {
		return []Parcelle{}
	}
	s.cached = parcelles
	s.initialized = true
	return cloneParcelles(parcelles)
}

// Refresh refetches unconditionally and returns the snapshot it leaves
// behind. On failure the previous cache is kept and returned, empty when
// nothing was ever loaded.
func (s *Store) Refresh(ctx context.Context) []Parcelle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parcelles, ok := s.fetchLocked(ctx, opRefresh); ok {
		s.cached = parcelles
		s.initialized = true
	}
	return cloneParcelles(s.cached)
}

// Initialized reports whether a fetch has succeeded.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Store) fetchLocked(ctx context.Context, op string) ([]Parcelle, bool) {
	start := s.now()
	parcelles, stats, err := s.loader.parcelles(ctx)
	stats.Duration = s.now().Sub(start)
	if err != nil {
		s.logger.Error("plot fetch failed", "operation", op, "error", err)
		s.observer.ObserveFetch(op, false, stats)
		return nil, false
	}
	s.logger.Info("plot fetch completed",
		"operation", op,
		"users", stats.Users,
		"plots", stats.Plots,
		"plants", stats.Plants,
		"skipped", stats.Skipped,
		"latency_ms", stats.Duration.Milliseconds(),
	)
	s.observer.ObserveFetch(op, true, stats)
	return parcelles, true
}
