package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ecoplot/internal/domain/catalog"
	"github.com/yanqian/ecoplot/internal/infra/config"
)

type countingSource struct {
	opens atomic.Int32
}

func (s *countingSource) Open(context.Context) (io.ReadCloser, error) {
	s.opens.Add(1)
	return io.NopCloser(strings.NewReader("name;kind;score;reliability;conditions\nnitrogen_provision;Luzerne;0.8;0.7;sec\n")), nil
}

func (s *countingSource) Describe() string { return "counting" }

func TestAppRunPreloadsAndShutsDown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := &countingSource{}
	loader := catalog.NewLoader(src, logger)
	cfg := &config.Config{
		HTTP:    config.HTTPConfig{Address: "127.0.0.1:0"},
		Catalog: config.CatalogConfig{Preload: true},
	}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	app := NewApp(cfg, logger, server, loader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, loader.Loaded, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.Equal(t, int32(1), src.opens.Load())
}
