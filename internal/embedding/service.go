package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/DreamCats/searchsync/internal/config"
)

// Service provides embedding generation with pipeline batching on top of a
// Client. Profile dimensions are cached from the startup health check.
type Service struct {
	client     Client
	batchSize  int
	dimensions map[string]int
}

// NewService creates the embedding service and performs the startup health
// check. An unreachable embedding service is fatal: populating a semantic
// index without vectors would be pointless.
func NewService(ctx context.Context, cfg *config.EmbeddingConfig) (*Service, error) {
	client := NewHTTPClient(cfg.Endpoint, cfg.Normalize, time.Duration(cfg.TimeoutS)*time.Second)
	return NewServiceWithClient(ctx, client, cfg.BatchSize)
}

// NewServiceWithClient wires an explicit client (used by tests).
func NewServiceWithClient(ctx context.Context, client Client, batchSize int) (*Service, error) {
	if batchSize <= 0 {
		batchSize = 50
	}
	models, err := client.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("embedding service health check failed: %w", err)
	}
	dims := make(map[string]int, len(models))
	for profile, info := range models {
		dims[profile] = info.Dimensions
	}
	return &Service{
		client:     client,
		batchSize:  batchSize,
		dimensions: dims,
	}, nil
}

// Dimensions returns the vector dimensionality of a profile, 0 if the
// profile is not loaded.
func (s *Service) Dimensions(profile string) int {
	return s.dimensions[profile]
}

// Profiles returns the loaded profile names and dimensions.
func (s *Service) Profiles() map[string]int {
	out := make(map[string]int, len(s.dimensions))
	for k, v := range s.dimensions {
		out[k] = v
	}
	return out
}

// Embed generates an embedding for a single text
func (s *Service) Embed(ctx context.Context, text string, profile string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	return s.client.Embed(ctx, text, profile)
}

// EmbedBatch generates embeddings for multiple texts, splitting the input
// into service-sized batches. The result always has one entry per input;
// empty texts get a nil vector.
func (s *Service) EmbedBatch(ctx context.Context, texts []string, profile string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	validTexts := make([]string, 0, len(texts))
	validIndices := make([]int, 0, len(texts))
	for i, text := range texts {
		if text != "" {
			validTexts = append(validTexts, text)
			validIndices = append(validIndices, i)
		}
	}

	results := make([][]float32, len(texts))
	for i := 0; i < len(validTexts); i += s.batchSize {
		end := i + s.batchSize
		if end > len(validTexts) {
			end = len(validTexts)
		}
		vectors, err := s.client.EmbedBatch(ctx, validTexts[i:end], profile)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d-%d: %w", i, end, err)
		}
		for j, vec := range vectors {
			results[validIndices[i+j]] = vec
		}
	}
	return results, nil
}
