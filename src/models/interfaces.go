package models

import (
	"context"
)

// ProviderClient defines the interface every concrete provider backend
// implements. The per-call timeout travels as a context deadline.
type ProviderClient interface {
	Name() string
	Execute(ctx context.Context, task TaskType, payload string, model string) (*ProviderResult, error)
	HealthCheck(ctx context.Context) bool
}

// RequestRouter defines the interface the HTTP surface consumes.
type RequestRouter interface {
	Route(ctx context.Context, req *RoutingRequest) (*RoutingResponse, error)
	MetricsSnapshot() map[string]*MetricsSnapshot
	AvailableModels() []*ModelDescriptor
	SwitchPreferredProvider(provider string) error
	ProviderHealth(ctx context.Context) map[string]bool
}

// CacheStore defines the interface for response cache operations
type CacheStore interface {
	Get(ctx context.Context, key string) (*RoutingResponse, error)
	Set(ctx context.Context, key string, response *RoutingResponse) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SemanticCacheResult represents a cache result with similarity score
type SemanticCacheResult struct {
	Response   *RoutingResponse
	Similarity float64
	CacheKey   string
}

// SemanticCacheStore extends CacheStore with semantic similarity search
type SemanticCacheStore interface {
	CacheStore
	// GetSimilar finds semantically similar cached payloads
	GetSimilar(ctx context.Context, payload string, threshold float64) (*SemanticCacheResult, error)
	// SetWithEmbedding stores a response with its payload embedding
	SetWithEmbedding(ctx context.Context, key string, payload string, response *RoutingResponse) error
}
