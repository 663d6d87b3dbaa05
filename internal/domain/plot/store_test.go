package plot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ecoplot/pkg/errors"
	"github.com/yanqian/ecoplot/pkg/logger"
	"github.com/yanqian/ecoplot/pkg/metrics"
)

type stubSource struct {
	mu       sync.Mutex
	users    []User
	plots    map[string][]PlotDocument
	plants   map[string][]PlantDocument
	userErrs []error
	plotErrs map[string]error

	fetches  atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (s *stubSource) ListUsers(ctx context.Context) ([]User, error) {
	s.fetches.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.userErrs) > 0 {
		err := s.userErrs[0]
		s.userErrs = s.userErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return append([]User(nil), s.users...), nil
}

func (s *stubSource) ListPlots(ctx context.Context, userID string) ([]PlotDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.plotErrs[userID]; err != nil {
		return nil, err
	}
	return s.plots[userID], nil
}

func (s *stubSource) ListPlants(ctx context.Context, userID, plotID string) ([]PlantDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plants[userID+"/"+plotID], nil
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
	last  metrics.FetchStats
}

func (o *recordingObserver) ObserveFetch(op string, success bool, stats metrics.FetchStats) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status := "ok"
	if !success {
		status = "failed"
	}
	o.calls = append(o.calls, op+":"+status)
	o.last = stats
}

func newFixtureSource() *stubSource {
	return &stubSource{
		users: []User{{ID: "u1", Name: "Alice"}, {ID: "u2"}},
		plots: map[string][]PlotDocument{
			"u1": {
				{ID: "p2", Name: "Verger", Latitude: 45.1, Longitude: 4.2},
				{ID: "p1", Name: "Potager"},
				{Name: "no id"},
			},
			"u2": {{ID: "p9", Name: "Haie"}},
		},
		plants: map[string][]PlantDocument{
			"u1/p2": {
				{FieldCommonName: "Pommier", FieldServiceValues: []any{0.1, 0.5, 0.6}},
				nil,
			},
			"u1/p1": {{FieldCommonName: "Fève", FieldServiceValues: []any{0.9, -1, 0.3}}},
			"u2/p9": {},
		},
	}
}

func TestStoreGetAllFetchesOnce(t *testing.T) {
	src := newFixtureSource()
	obs := &recordingObserver{}
	store := NewStore(src, obs, logger.Discard())

	first := store.GetAll(context.Background())
	second := store.GetAll(context.Background())

	require.Equal(t, int32(1), src.fetches.Load())
	require.Equal(t, first, second)
	require.Len(t, first, 3)
	require.Equal(t, "Alice", first[0].Author)
	require.Equal(t, 45.1, *first[0].Latitude)
	require.Len(t, first[0].Plants, 1)
	require.Equal(t, "Pommier", first[0].Plants[0].Name)
	require.Equal(t, "u2", first[2].Author)
	require.Empty(t, first[2].Plants)

	require.Equal(t, []string{"get_all:ok"}, obs.calls)
	require.Equal(t, 2, obs.last.Users)
	require.Equal(t, 3, obs.last.Plots)
	require.Equal(t, 2, obs.last.Plants)
	require.Equal(t, 2, obs.last.Skipped)
}

func TestStoreRefreshAlwaysFetches(t *testing.T) {
	src := newFixtureSource()
	store := NewStore(src, nil, logger.Discard())

	store.Refresh(context.Background())
	require.True(t, store.Initialized())
	store.GetAll(context.Background())
	store.Refresh(context.Background())

	require.Equal(t, int32(2), src.fetches.Load())
}

func TestStoreGetAllFailureIsNotCached(t *testing.T) {
	src := newFixtureSource()
	src.userErrs = []error{errors.New("unavailable")}
	store := NewStore(src, nil, logger.Discard())

	got := store.GetAll(context.Background())
	require.NotNil(t, got)
	require.Empty(t, got)
	require.False(t, store.Initialized())

	got = store.GetAll(context.Background())
	require.Len(t, got, 3)
	require.Equal(t, int32(2), src.fetches.Load())
}

func TestStoreRefreshFailureKeepsStaleCache(t *testing.T) {
	src := newFixtureSource()
	obs := &recordingObserver{}
	store := NewStore(src, obs, logger.Discard())
	before := store.GetAll(context.Background())

	src.mu.Lock()
	src.userErrs = []error{errors.New("timeout")}
	src.users = nil
	src.mu.Unlock()

	store.Refresh(context.Background())
	after := store.GetAll(context.Background())
	require.Equal(t, before, after)
	require.Equal(t, []string{"get_all:ok", "refresh:failed"}, obs.calls)
}

func TestStoreSerializesConcurrentFetches(t *testing.T) {
	src := newFixtureSource()
	src.delay = 5 * time.Millisecond
	store := NewStore(src, nil, logger.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.GetAll(context.Background())
		}()
		go func() {
			defer wg.Done()
			store.Refresh(context.Background())
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), src.maxSeen.Load())
	require.Len(t, store.GetAll(context.Background()), 3)
}

func TestStoreReturnsIndependentCopies(t *testing.T) {
	store := NewStore(newFixtureSource(), nil, logger.Discard())
	first := store.GetAll(context.Background())
	first[0].Plants[0].Name = "mutated"
	first[0].Author = "mutated"

	second := store.GetAll(context.Background())
	require.Equal(t, "Pommier", second[0].Plants[0].Name)
	require.Equal(t, "Alice", second[0].Author)
}

func TestStoreSkipsUserWhosePlotsFail(t *testing.T) {
	src := newFixtureSource()
	src.plotErrs = map[string]error{"u1": errors.New("permission denied")}
	store := NewStore(src, nil, logger.Discard())

	got := store.GetAll(context.Background())
	require.Len(t, got, 1)
	require.Equal(t, "u2", got[0].Author)
}

type cancellingSource struct {
	*stubSource
	cancel   context.CancelFunc
	plantErr error
}

func (s *cancellingSource) ListPlants(ctx context.Context, userID, plotID string) ([]PlantDocument, error) {
	if s.cancel != nil {
		s.cancel()
		if s.plantErr != nil {
			return nil, s.plantErr
		}
		return nil, ctx.Err()
	}
	return s.stubSource.ListPlants(ctx, userID, plotID)
}

func newSinglePlotSource() *stubSource {
	return &stubSource{
		users: []User{{ID: "u1", Name: "Alice"}},
		plots: map[string][]PlotDocument{"u1": {{ID: "p1", Name: "Potager"}}},
		plants: map[string][]PlantDocument{
			"u1/p1": {{FieldCommonName: "Fève", FieldServiceValues: []any{0.9, -1, 0.3}}},
		},
	}
}

func TestStoreCancelledFetchIsNotCached(t *testing.T) {
	cases := map[string]error{
		"context error":   nil,
		"transport error": errors.New("connection reset"),
	}
	for name, plantErr := range cases {
		t.Run(name, func(t *testing.T) {
			src := &cancellingSource{stubSource: newSinglePlotSource(), plantErr: plantErr}
			obs := &recordingObserver{}
			store := NewStore(src, obs, logger.Discard())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			src.cancel = cancel

			got := store.GetAll(ctx)
			require.NotNil(t, got)
			require.Empty(t, got)
			require.False(t, store.Initialized())

			src.cancel = nil
			got = store.GetAll(context.Background())
			require.Len(t, got, 1)
			require.Equal(t, "Alice", got[0].Author)
			require.Equal(t, int32(2), src.fetches.Load())
			require.Equal(t, []string{"get_all:failed", "get_all:ok"}, obs.calls)
		})
	}
}

func TestStoreCancelledRefreshKeepsStaleCache(t *testing.T) {
	src := &cancellingSource{stubSource: newSinglePlotSource()}
	store := NewStore(src, nil, logger.Discard())
	before := store.GetAll(context.Background())
	require.Len(t, before, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src.cancel = cancel

	require.Equal(t, before, store.Refresh(ctx))
	src.cancel = nil
	require.Equal(t, before, store.GetAll(context.Background()))
}

func TestStoreFetchWithDoneContextFails(t *testing.T) {
	store := NewStore(newSinglePlotSource(), nil, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Empty(t, store.GetAll(ctx))
	require.False(t, store.Initialized())
}

func TestStoreRefreshReturnsWrittenSnapshot(t *testing.T) {
	src := newFixtureSource()
	store := NewStore(src, nil, logger.Discard())

	got := store.Refresh(context.Background())
	require.Len(t, got, 3)
	got[0].Author = "mutated"
	require.Equal(t, "Alice", store.GetAll(context.Background())[0].Author)
	require.Equal(t, int32(1), src.fetches.Load())
}

func TestServiceRefreshFailureFetchesOnce(t *testing.T) {
	src := newFixtureSource()
	src.userErrs = []error{errors.New("unavailable")}
	svc := NewService(NewStore(src, nil, logger.Discard()), src, nil, logger.Discard())

	got := svc.Refresh(context.Background())
	require.NotNil(t, got)
	require.Empty(t, got)
	require.Equal(t, int32(1), src.fetches.Load())
}

func TestServiceAverages(t *testing.T) {
	src := newFixtureSource()
	svc := NewService(NewStore(src, nil, logger.Discard()), src, nil, logger.Discard())

	summary, err := svc.Averages(context.Background(), "u1", "p1")
	require.NoError(t, err)
	require.Equal(t, "Potager", summary.Plot.Name)
	require.Equal(t, [3]float64{0.9, 0, 0.3}, summary.Averages)

	_, err = svc.Averages(context.Background(), "u1", "missing")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.Averages(context.Background(), "", "p1")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServicePlotsKeepsSourceOrder(t *testing.T) {
	src := newFixtureSource()
	svc := NewService(NewStore(src, nil, logger.Discard()), src, nil, logger.Discard())

	summaries, err := svc.Plots(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "p2", summaries[0].Plot.ID)
	require.Equal(t, "p1", summaries[1].Plot.ID)

	src.plotErrs = map[string]error{"u1": errors.New("boom")}
	_, err = svc.Plots(context.Background(), "u1")
	require.True(t, apperrors.IsCode(err, apperrors.CodeSourceError))
}

func TestServiceRefreshReturnsSnapshot(t *testing.T) {
	src := newFixtureSource()
	svc := NewService(NewStore(src, nil, logger.Discard()), src, nil, logger.Discard())
	require.Len(t, svc.Refresh(context.Background()), 3)
	require.Len(t, svc.Parcelles(context.Background()), 3)
	require.Equal(t, int32(1), src.fetches.Load())
}

type stubGeocoder struct {
	results []Coordinates
	err     error
	queries []string
}

func (g *stubGeocoder) Geocode(ctx context.Context, query string) ([]Coordinates, error) {
	g.queries = append(g.queries, query)
	return g.results, g.err
}

func TestServiceLocate(t *testing.T) {
	geo := &stubGeocoder{results: []Coordinates{{Latitude: 48.85, Longitude: 2.35}, {Latitude: 1, Longitude: 1}}}
	svc := NewService(NewStore(newFixtureSource(), nil, logger.Discard()), newFixtureSource(), geo, logger.Discard())

	got, err := svc.Locate(context.Background(), " Paris ")
	require.NoError(t, err)
	require.Equal(t, Coordinates{Latitude: 48.85, Longitude: 2.35}, got)
	require.Equal(t, []string{"Paris"}, geo.queries)

	geo.results = nil
	_, err = svc.Locate(context.Background(), "Nowhere")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	geo.err = errors.New("rate limited")
	_, err = svc.Locate(context.Background(), "Lyon")
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeocodeError))

	_, err = svc.Locate(context.Background(), "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
