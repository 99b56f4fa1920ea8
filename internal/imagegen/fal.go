package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultFALBaseURL  = "https://fal.run"
	defaultFALModel    = "fal-ai/nano-banana-pro"
	defaultFALTimeout  = 3 * time.Minute
	maxErrorBodyLength = 512
)

// FALConfig captures the settings required to call a FAL model endpoint.
type FALConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// FALGenerator calls a FAL text-to-image model over its synchronous HTTP API.
type FALGenerator struct {
	cfg        FALConfig
	httpClient *http.Client
}

type FALOption func(*FALGenerator)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) FALOption {
	return func(g *FALGenerator) {
		if client != nil {
			g.httpClient = client
		}
	}
}

func NewFALGenerator(cfg FALConfig, opts ...FALOption) *FALGenerator {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.Trim(strings.TrimSpace(cfg.Model), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultFALBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultFALModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFALTimeout
	}

	g := &FALGenerator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type falRequest struct {
	Prompt       string `json:"prompt"`
	NumImages    int    `json:"num_images"`
	AspectRatio  string `json:"aspect_ratio"`
	Resolution   string `json:"resolution"`
	OutputFormat string `json:"output_format"`
}

type falResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Detail any `json:"detail"`
}

// StatusError reports a non-2xx reply from the image service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("image request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (g *FALGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if g.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}
	req, err := req.Normalize()
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}

	payload := falRequest{
		Prompt:       req.StyledPrompt(),
		NumImages:    1,
		AspectRatio:  req.AspectRatio,
		Resolution:   req.Resolution,
		OutputFormat: "png",
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("image request: encode body: %w", err)
	}

	endpoint, err := url.JoinPath(g.cfg.BaseURL, g.cfg.Model)
	if err != nil {
		return "", fmt.Errorf("image request: build url: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("image request: new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Key "+g.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("image request: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncateRunes(string(body), maxErrorBodyLength),
		}
	}

	var decoded falResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("image request: decode body: %w", err)
	}
	if len(decoded.Images) == 0 || strings.TrimSpace(decoded.Images[0].URL) == "" {
		return "", errors.New("no image URL in response")
	}
	return strings.TrimSpace(decoded.Images[0].URL), nil
}
