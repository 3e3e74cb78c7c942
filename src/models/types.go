package models

import "time"

// TaskType identifies the capability a request needs from a model.
type TaskType string

const (
	TaskCompletion TaskType = "completion"
	TaskChat       TaskType = "chat"
	TaskEmbedding  TaskType = "embedding"
	TaskAnalysis   TaskType = "analysis"
	TaskCreative   TaskType = "creative"
)

// Strategy selects how candidates are executed for a request.
type Strategy string

const (
	StrategySingle      Strategy = "single"
	StrategyFallback    Strategy = "fallback"
	StrategyEnsemble    Strategy = "ensemble"
	StrategyLoadBalance Strategy = "load_balance"
)

// ModelDescriptor describes one (provider, model) pair registered at startup.
// Immutable after registration.
type ModelDescriptor struct {
	Provider     string     `json:"provider"`
	Model        string     `json:"model"`
	Capabilities []TaskType `json:"capabilities"`
	MaxTokens    int        `json:"max_tokens"`
	Temperature  float32    `json:"temperature"`
	Priority     float64    `json:"priority"`
	CostPerToken float64    `json:"cost_per_token"`
	AvgLatencyMs float64    `json:"avg_latency_ms"`
	Reliability  float64    `json:"reliability"`
}

// Key returns the metrics key for this descriptor.
func (d *ModelDescriptor) Key() string {
	return d.Provider + "/" + d.Model
}

// Supports reports whether the descriptor advertises the given capability.
func (d *ModelDescriptor) Supports(task TaskType) bool {
	for _, c := range d.Capabilities {
		if c == task {
			return true
		}
	}
	return false
}

type RoutingRequest struct {
	Payload           string            `json:"payload" binding:"required"`
	TaskType          TaskType          `json:"task_type" binding:"required"`
	Strategy          Strategy          `json:"strategy,omitempty"`
	PreferredProvider string            `json:"preferred_provider,omitempty"`
	ModelPreferences  []string          `json:"model_preferences,omitempty"`
	TimeoutMs         int64             `json:"timeout_ms,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`

	// Timeout is the resolved per-call deadline, filled from TimeoutMs or
	// the configured default during validation.
	Timeout time.Duration `json:"-"`
}

type RoutingResponse struct {
	RequestID  string        `json:"request_id"`
	Content    string        `json:"content,omitempty"`
	Embedding  []float64     `json:"embedding,omitempty"`
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	Strategy   Strategy      `json:"strategy"`
	Confidence float64       `json:"confidence"`
	Latency    time.Duration `json:"latency"`
	Cost       float64       `json:"cost"`
	CacheHit   bool          `json:"cache_hit"`
	Timestamp  time.Time     `json:"timestamp"`

	// Ensemble-only: per-member results, keyed to the synthetic ensemble id
	// reported in Provider/Model.
	EnsembleResults []MemberResult `json:"ensemble_results,omitempty"`
	// Fallback-only: the attempts that failed before one succeeded.
	Fallbacks []AttemptFailure `json:"fallbacks,omitempty"`
}

// MemberResult is one successful ensemble member's contribution.
type MemberResult struct {
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	Content    string        `json:"content,omitempty"`
	Embedding  []float64     `json:"embedding,omitempty"`
	Confidence float64       `json:"confidence"`
	Latency    time.Duration `json:"latency"`
	Cost       float64       `json:"cost"`
}

// AttemptFailure records one failed attempt in a fallback chain.
type AttemptFailure struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Error    string `json:"error"`
}

// ProviderResult is what a ProviderClient returns for a single call.
type ProviderResult struct {
	Content    string    `json:"content,omitempty"`
	Embedding  []float64 `json:"embedding,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Cost       float64   `json:"cost"`
	TokensIn   int       `json:"tokens_in,omitempty"`
	TokensOut  int       `json:"tokens_out,omitempty"`
}

// MetricsSnapshot is an immutable copy of one model's performance counters.
type MetricsSnapshot struct {
	Provider      string        `json:"provider"`
	Model         string        `json:"model"`
	RequestCount  int64         `json:"request_count"`
	SuccessCount  int64         `json:"success_count"`
	FailureCount  int64         `json:"failure_count"`
	AvgLatency    time.Duration `json:"avg_latency"`
	TotalCost     float64       `json:"total_cost"`
	LastError     string        `json:"last_error,omitempty"`
	LastErrorTime time.Time     `json:"last_error_time,omitempty"`
}

// SuccessRate returns successCount/requestCount, or 0 when nothing recorded.
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestCount == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.RequestCount)
}

// ErrorRate returns failureCount/requestCount, or 0 when nothing recorded.
func (s *MetricsSnapshot) ErrorRate() float64 {
	if s.RequestCount == 0 {
		return 0
	}
	return float64(s.FailureCount) / float64(s.RequestCount)
}
