package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/ecoplot/internal/domain/plot"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org/search"
	defaultUserAgent = "ecoplot/1.0"
)

// Config configures the geocoding client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client resolves place names through a Nominatim search endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	agent := strings.TrimSpace(cfg.UserAgent)
	if agent == "" {
		agent = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		userAgent:  agent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Geocode returns matches for query, best first.
func (c *Client) Geocode(ctx context.Context, query string) ([]plot.Coordinates, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	// Nominatim's usage policy rejects requests without an identifying agent.
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("geocode request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	out := make([]plot.Coordinates, 0, len(places))
	for _, p := range places {
		coords, ok := p.coordinates()
		if !ok {
			continue
		}
		out = append(out, coords)
	}
	return out, nil
}

// place mirrors a search hit; Nominatim encodes coordinates as strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (p place) coordinates() (plot.Coordinates, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
	if err != nil {
		return plot.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(p.Lon), 64)
	if err != nil {
		return plot.Coordinates{}, false
	}
	return plot.Coordinates{Latitude: lat, Longitude: lon}, true
}

var _ plot.Geocoder = (*Client)(nil)
