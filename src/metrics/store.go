package metrics

import (
	"sync"
	"time"

	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

// Store keeps per-model rolling performance counters. A single mutex
// serializes updates so concurrent completions for the same model never lose
// increments; reads hand out copies, never live entries.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	provider      string
	model         string
	requestCount  int64
	successCount  int64
	failureCount  int64
	avgLatency    time.Duration
	totalCost     float64
	lastError     string
	lastErrorTime time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
	}
}

// RecordOutcome folds one resolved provider call into the counters for
// provider/model. The running average follows avg' = (avg*(n-1)+latency)/n.
func (s *Store) RecordOutcome(provider, model string, success bool, latency time.Duration, cost float64, callErr error) {
	key := provider + "/" + model

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{provider: provider, model: model}
		s.entries[key] = e
	}

	e.requestCount++
	if success {
		e.successCount++
	} else {
		e.failureCount++
		if callErr != nil {
			e.lastError = callErr.Error()
		}
		e.lastErrorTime = time.Now()
	}

	n := e.requestCount
	e.avgLatency = time.Duration((int64(e.avgLatency)*(n-1) + int64(latency)) / n)
	e.totalCost += cost
}

// Snapshot returns an immutable copy of one model's counters.
func (s *Store) Snapshot(provider, model string) (*models.MetricsSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[provider+"/"+model]
	if !ok {
		return nil, false
	}
	return e.snapshot(), true
}

// SnapshotAll returns copies of every model's counters keyed by
// provider/model.
func (s *Store) SnapshotAll() map[string]*models.MetricsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*models.MetricsSnapshot, len(s.entries))
	for key, e := range s.entries {
		out[key] = e.snapshot()
	}
	return out
}

// RequestCount returns the live request counter for provider/model, 0 when
// nothing has been recorded.
func (s *Store) RequestCount(provider, model string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[provider+"/"+model]; ok {
		return e.requestCount
	}
	return 0
}

// ProviderErrorRate aggregates failureCount/requestCount across every model
// of the given provider. Providers with no recorded requests rate 0.
func (s *Store) ProviderErrorRate(provider string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var requests, failures int64
	for _, e := range s.entries {
		if e.provider == provider {
			requests += e.requestCount
			failures += e.failureCount
		}
	}
	if requests == 0 {
		return 0
	}
	return float64(failures) / float64(requests)
}

func (e *entry) snapshot() *models.MetricsSnapshot {
	return &models.MetricsSnapshot{
		Provider:      e.provider,
		Model:         e.model,
		RequestCount:  e.requestCount,
		SuccessCount:  e.successCount,
		FailureCount:  e.failureCount,
		AvgLatency:    e.avgLatency,
		TotalCost:     e.totalCost,
		LastError:     e.lastError,
		LastErrorTime: e.lastErrorTime,
	}
}
