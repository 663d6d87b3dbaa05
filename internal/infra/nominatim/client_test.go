package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ecoplot/internal/domain/plot"
)

func TestClientGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Lyon, France", r.URL.Query().Get("q"))
		require.Equal(t, "json", r.URL.Query().Get("format"))
		require.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"lat":"45.7578","lon":"4.8320","display_name":"Lyon"},{"lat":"bad","lon":"1"}]`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, UserAgent: "test-agent"})
	got, err := client.Geocode(context.Background(), "Lyon, France")
	require.NoError(t, err)
	require.Equal(t, []plot.Coordinates{{Latitude: 45.7578, Longitude: 4.8320}}, got)
}

func TestClientGeocodeEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	got, err := NewClient(Config{BaseURL: srv.URL}).Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestClientGeocodeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Geocode(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=429")
}
