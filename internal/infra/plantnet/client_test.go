package plantnet

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ecoplot/internal/domain/identify"
)

func TestClientIdentify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/identify/weurope", r.URL.Path)
		require.Equal(t, "secret", r.URL.Query().Get("api-key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "leaf", r.FormValue("organs"))
		file, hdr, err := r.FormFile("images")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "png-bytes", string(content))
		require.Equal(t, "leaf.png", hdr.Filename)
		require.Equal(t, "image/png", hdr.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"score":0.91,"species":{"scientificNameWithoutAuthor":"Trifolium repens"}},
			{"score":0.05,"species":{"scientificNameWithoutAuthor":""}},
			{"score":0.02,"species":{"scientificNameWithoutAuthor":"Medicago sativa"}}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/v2/identify/", APIKey: "secret", Project: "weurope"})
	got, err := client.Identify(context.Background(), identify.Image{
		Filename: "leaf.png",
		MimeType: "image/png",
		Organ:    "leaf",
		Content:  []byte("png-bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, []identify.Candidate{
		{ScientificName: "Trifolium repens", Score: 0.91},
		{ScientificName: "Medicago sativa", Score: 0.02},
	}, got)
}

func TestClientIdentifyNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Species not found"}`))
	}))
	defer srv.Close()

	got, err := NewClient(Config{BaseURL: srv.URL}).Identify(context.Background(), identify.Image{Organ: "auto", Content: []byte("x")})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestClientIdentifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`invalid api key`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Identify(context.Background(), identify.Image{Organ: "auto", Content: []byte("x")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=401")
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	require.Equal(t, defaultBaseURL+"/all", c.endpoint)
}
