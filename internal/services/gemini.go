package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Embedder turns resume text into a dense vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService interface {
	Embedder
	GenerateEmbeddingWithRetry(ctx context.Context, text string, maxRetries int) ([]float32, error)
}

type geminiService struct {
	client     *genai.Client
	embedModel string
	log        *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, embedModel string, log *zap.Logger) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if embedModel == "" {
		embedModel = "text-embedding-004"
	}

	return &geminiService{
		client:     client,
		embedModel: embedModel,
		log:        log,
	}, nil
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// ~10000 tokens is the embedding input limit
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

func (g *geminiService) GenerateEmbeddingWithRetry(ctx context.Context, text string, maxRetries int) ([]float32, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		vec, err := g.GenerateEmbedding(ctx, text)
		if err == nil {
			return vec, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < maxRetries {
			g.log.Warn("embedding attempt failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

// cachedEmbedder memoises embeddings in memory by text hash.
type cachedEmbedder struct {
	next     Embedder
	maxItems int
	memCache map[string][]float32
	mu       sync.RWMutex
}

// NewCachedEmbedder wraps next with an in-memory cache holding up to maxItems vectors.
func NewCachedEmbedder(next Embedder, maxItems int) Embedder {
	return &cachedEmbedder{
		next:     next,
		maxItems: maxItems,
		memCache: make(map[string][]float32),
	}
}

func (c *cachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if vec := c.getFromCache(key); vec != nil {
		return vec, nil
	}

	vec, err := c.next.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	c.storeInMemory(key, vec)
	return cloneVector(vec), nil
}

func (c *cachedEmbedder) getFromCache(key string) []float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if vec, ok := c.memCache[key]; ok {
		return cloneVector(vec)
	}
	return nil
}

func (c *cachedEmbedder) storeInMemory(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxItems > 0 && len(c.memCache) >= c.maxItems {
		clear(c.memCache)
	}
	c.memCache[key] = cloneVector(vec)
}

func cacheKey(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
