package plantnet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/ecoplot/internal/domain/identify"
)

const (
	defaultBaseURL = "https://my-api.plantnet.org/v2/identify"
	defaultProject = "all"
)

// Config configures the Pl@ntNet client.
type Config struct {
	BaseURL string
	APIKey  string
	Project string
	Timeout time.Duration
}

// Client calls the Pl@ntNet identification API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	project := strings.Trim(strings.TrimSpace(cfg.Project), "/")
	if project == "" {
		project = defaultProject
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(base, "/") + "/" + url.PathEscape(project),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Identify uploads the image and returns ranked candidates. A "species not
// found" answer yields no candidates and no error.
func (c *Client) Identify(ctx context.Context, img identify.Image) ([]identify.Candidate, error) {
	body, contentType, err := encodeUpload(img)
	if err != nil {
		return nil, fmt.Errorf("encode identify upload: %w", err)
	}

	endpoint := c.endpoint
	if c.apiKey != "" {
		endpoint += "?api-key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build identify request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("identify request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode identify response: %w", err)
	}
	return raw.candidates(), nil
}

type apiResponse struct {
	Results []apiResult `json:"results"`
}

type apiResult struct {
	Score   float64 `json:"score"`
	Species struct {
		ScientificNameWithoutAuthor string `json:"scientificNameWithoutAuthor"`
	} `json:"species"`
}

func (r apiResponse) candidates() []identify.Candidate {
	out := make([]identify.Candidate, 0, len(r.Results))
	for _, res := range r.Results {
		name := strings.TrimSpace(res.Species.ScientificNameWithoutAuthor)
		if name == "" {
			continue
		}
		out = append(out, identify.Candidate{ScientificName: name, Score: res.Score})
	}
	return out
}

func encodeUpload(img identify.Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := img.Filename
	if filename == "" {
		filename = "image.jpg"
	}
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Content); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("organs", img.Organ); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

var _ identify.Identifier = (*Client)(nil)
