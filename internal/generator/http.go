package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient calls a responder's /respond endpoint.
type HTTPClient struct {
	url    string
	client *http.Client
}

var _ Generator = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the responder at url. timeout bounds
// each call; zero means no client-side timeout.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type respondRequest struct {
	TenantID string `json:"tenantId"`
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
	Slow     bool   `json:"slow,omitempty"`
}

type respondResponse struct {
	Reply    string         `json:"reply"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (c *HTTPClient) Generate(ctx context.Context, tenantID, text string, opts Options) (*Reply, error) {
	payload, err := json.Marshal(respondRequest{
		TenantID: tenantID,
		Text:     text,
		Provider: opts.Provider,
		Slow:     opts.Slow,
	})
	if err != nil {
		return nil, fmt.Errorf("generator.HTTPClient.Generate: encode: %w: %w", ErrGenerator, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("generator.HTTPClient.Generate: build request: %w: %w", ErrGenerator, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", tenantID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generator.HTTPClient.Generate: %w: %w", ErrGenerator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("generator.HTTPClient.Generate: status %d: %w", resp.StatusCode, ErrGenerator)
	}

	var out respondResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("generator.HTTPClient.Generate: decode: %w: %w", ErrGenerator, err)
	}

	return &Reply{Text: out.Reply, Metadata: out.Metadata}, nil
}
