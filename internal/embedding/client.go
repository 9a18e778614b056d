package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the interface for embedding API clients
type Client interface {
	Embed(ctx context.Context, text string, profile string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string, profile string) ([][]float32, error)
	Health(ctx context.Context) (map[string]ModelInfo, error)
}

// ModelInfo describes one loaded model profile as reported by the service.
type ModelInfo struct {
	Dimensions int `json:"dimensions"`
}

// HTTPClient talks to the embedding service over its HTTP contract:
// GET /health for loaded profiles, POST /embed for batched vectors.
type HTTPClient struct {
	endpoint  string
	normalize bool
	client    *http.Client
}

// NewHTTPClient creates a client for the embedding service endpoint.
func NewHTTPClient(endpoint string, normalize bool, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		endpoint:  strings.TrimRight(endpoint, "/"),
		normalize: normalize,
		client:    &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	ModelType string   `json:"model_type"`
	Normalize bool     `json:"normalize"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type healthResponse struct {
	Models map[string]ModelInfo `json:"models"`
}

// Embed generates an embedding for a single text
func (c *HTTPClient) Embed(ctx context.Context, text string, profile string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text}, profile)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

// EmbedBatch generates one vector per input text in a single call.
func (c *HTTPClient) EmbedBatch(ctx context.Context, texts []string, profile string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embedRequest{
		Texts:     texts,
		ModelType: profile,
		Normalize: c.normalize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/embed", body)
	if err != nil {
		return nil, err
	}

	var parsed embedResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse embed response: %w", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Embeddings))
	}
	return parsed.Embeddings, nil
}

// Health reports the loaded model profiles and their vector dimensions.
// The bootstrapper uses this to validate index mapping dimensions against
// the live model.
func (c *HTTPClient) Health(ctx context.Context) (map[string]ModelInfo, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var parsed healthResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	if len(parsed.Models) == 0 {
		return nil, fmt.Errorf("embedding service reports no loaded models")
	}
	return parsed.Models, nil
}

func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var buf io.Reader
	if body != nil {
		buf = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding service status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
