package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

const (
	payloadPrefix   = "payload:"
	embeddingPrefix = "embedding:"
)

// Embedder produces payload embeddings for similarity search.
type Embedder interface {
	Embed(ctx context.Context, payload string) ([]float64, error)
}

// ProviderEmbedder adapts an embedding-capable provider client into an
// Embedder.
type ProviderEmbedder struct {
	Client models.ProviderClient
	Model  string
}

func (p *ProviderEmbedder) Embed(ctx context.Context, payload string) ([]float64, error) {
	result, err := p.Client.Execute(ctx, models.TaskEmbedding, payload, p.Model)
	if err != nil {
		return nil, err
	}
	return result.Embedding, nil
}

// CachedEntry represents a cached payload with its embedding
type CachedEntry struct {
	Payload   string                  `json:"payload"`
	Embedding []float64               `json:"embedding"`
	Response  *models.RoutingResponse `json:"response"`
	CachedAt  time.Time               `json:"cached_at"`
}

// SemanticCache implements semantic similarity-based caching
type SemanticCache struct {
	client   *redis.Client
	embedder Embedder
	ttl      time.Duration
}

// NewSemanticCache creates a new semantic cache instance
func NewSemanticCache(redisCfg *config.RedisConfig, embedder Embedder) (*SemanticCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Address,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SemanticCache{
		client:   client,
		embedder: embedder,
		ttl:      redisCfg.CacheTTL,
	}, nil
}

// Get retrieves a cached response by exact key match
func (c *SemanticCache) Get(ctx context.Context, key string) (*models.RoutingResponse, error) {
	val, err := c.client.Get(ctx, payloadPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var entry CachedEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	return entry.Response, nil
}

// Set stores a response under its exact key without an embedding
func (c *SemanticCache) Set(ctx context.Context, key string, response *models.RoutingResponse) error {
	entry := CachedEntry{
		Payload:  key,
		Response: response,
		CachedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return c.client.Set(ctx, payloadPrefix+key, data, c.ttl).Err()
}

// Delete removes a cached entry
func (c *SemanticCache) Delete(ctx context.Context, key string) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, payloadPrefix+key)
	pipe.Del(ctx, embeddingPrefix+key)
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the Redis connection
func (c *SemanticCache) Close() error {
	return c.client.Close()
}

// GetSimilar finds a cached response whose payload embedding clears the
// similarity threshold for the given payload
func (c *SemanticCache) GetSimilar(ctx context.Context, payload string, threshold float64) (*models.SemanticCacheResult, error) {
	queryEmbedding, err := c.embedder.Embed(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to generate payload embedding: %w", err)
	}
	if len(queryEmbedding) == 0 {
		return nil, errors.New("embedder returned an empty vector")
	}

	keys, err := c.client.Keys(ctx, payloadPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cache keys: %w", err)
	}

	var bestMatch *models.SemanticCacheResult
	maxSimilarity := threshold

	for _, key := range keys {
		val, err := c.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}

		var entry CachedEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			continue
		}

		// Skip entries without embeddings
		if len(entry.Embedding) == 0 {
			continue
		}

		similarity := cosineSimilarity(queryEmbedding, entry.Embedding)

		if similarity > maxSimilarity {
			maxSimilarity = similarity
			cacheKey := key[len(payloadPrefix):]
			bestMatch = &models.SemanticCacheResult{
				Response:   entry.Response,
				Similarity: similarity,
				CacheKey:   cacheKey,
			}
		}
	}

	return bestMatch, nil
}

// SetWithEmbedding stores a response with its payload embedding
func (c *SemanticCache) SetWithEmbedding(ctx context.Context, key string, payload string, response *models.RoutingResponse) error {
	embedding, err := c.embedder.Embed(ctx, payload)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	entry := CachedEntry{
		Payload:   payload,
		Embedding: embedding,
		Response:  response,
		CachedAt:  time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := c.client.Set(ctx, payloadPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}

	return nil
}

// cosineSimilarity calculates the cosine similarity between two vectors
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
