package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

// stubEmbedder returns canned vectors keyed by payload.
type stubEmbedder struct {
	vectors map[string][]float64
}

func (s *stubEmbedder) Embed(_ context.Context, payload string) ([]float64, error) {
	if v, ok := s.vectors[payload]; ok {
		return v, nil
	}
	return []float64{0, 0, 1}, nil
}

func setupSemanticCache(t *testing.T, embedder Embedder) (*SemanticCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg := &config.RedisConfig{
		Address:  mr.Addr(),
		CacheTTL: time.Hour,
	}

	sc, err := NewSemanticCache(cfg, embedder)
	require.NoError(t, err)

	return sc, mr
}

func TestSemanticCache_ExactRoundTrip(t *testing.T) {
	sc, mr := setupSemanticCache(t, &stubEmbedder{})
	defer mr.Close()
	defer sc.Close()

	ctx := context.Background()
	response := &models.RoutingResponse{Content: "Paris", Provider: "openai", Model: "gpt-4o"}

	require.NoError(t, sc.Set(ctx, "route:exact", response))

	retrieved, err := sc.Get(ctx, "route:exact")
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "Paris", retrieved.Content)
}

func TestSemanticCache_GetSimilar_AboveThreshold(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"what is the capital of france": {1, 0, 0},
		"capital city of france":        {0.96, 0.28, 0},
	}}
	sc, mr := setupSemanticCache(t, embedder)
	defer mr.Close()
	defer sc.Close()

	ctx := context.Background()
	response := &models.RoutingResponse{Content: "Paris"}

	err := sc.SetWithEmbedding(ctx, "route:france", "what is the capital of france", response)
	require.NoError(t, err)

	hit, err := sc.GetSimilar(ctx, "capital city of france", 0.9)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Paris", hit.Response.Content)
	assert.Greater(t, hit.Similarity, 0.9)
	assert.Equal(t, "route:france", hit.CacheKey)
}

func TestSemanticCache_GetSimilar_BelowThreshold(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"weather in tokyo":   {1, 0, 0},
		"recipe for lasagna": {0, 1, 0},
	}}
	sc, mr := setupSemanticCache(t, embedder)
	defer mr.Close()
	defer sc.Close()

	ctx := context.Background()
	require.NoError(t, sc.SetWithEmbedding(ctx, "route:tokyo", "weather in tokyo", &models.RoutingResponse{Content: "Sunny"}))

	hit, err := sc.GetSimilar(ctx, "recipe for lasagna", 0.85)
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestSemanticCache_GetSimilar_SkipsEntriesWithoutEmbeddings(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"plain entry": {1, 0, 0},
	}}
	sc, mr := setupSemanticCache(t, embedder)
	defer mr.Close()
	defer sc.Close()

	ctx := context.Background()
	require.NoError(t, sc.Set(ctx, "route:plain", &models.RoutingResponse{Content: "stored without vector"}))

	hit, err := sc.GetSimilar(ctx, "plain entry", 0.1)
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}), "dimension mismatch scores zero")
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 1}), "zero vector scores zero")
}
