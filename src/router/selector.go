package router

import (
	"sort"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

// MetricsSource supplies scoring snapshots. Satisfied by metrics.Store.
type MetricsSource interface {
	Snapshot(provider, model string) (*models.MetricsSnapshot, bool)
}

// RankedModel pairs a candidate with its computed score.
type RankedModel struct {
	Descriptor *models.ModelDescriptor
	Score      float64
}

// Selector orders capability-matching candidates by a weighted score over
// static descriptor fields and live metrics. Deterministic for a fixed
// metrics snapshot; ties keep registration order.
type Selector struct {
	cfg *config.RoutingConfig
}

func NewSelector(cfg *config.RoutingConfig) *Selector {
	return &Selector{cfg: cfg}
}

// Rank scores every candidate and returns them ordered by descending score.
// preferred is the effective preferred provider for this request (the
// request's own preference when set, the adaptive default otherwise).
func (s *Selector) Rank(candidates []*models.ModelDescriptor, metrics MetricsSource, preferred string) []RankedModel {
	ranked := make([]RankedModel, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedModel{
			Descriptor: c,
			Score:      s.score(c, metrics, preferred),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

func (s *Selector) score(desc *models.ModelDescriptor, metrics MetricsSource, preferred string) float64 {
	w := s.cfg.Weights

	// Cold start: with no recorded requests the descriptor's static numbers
	// stand in for live ones.
	successRate := desc.Reliability
	latencyMs := desc.AvgLatencyMs
	if snap, ok := metrics.Snapshot(desc.Provider, desc.Model); ok && snap.RequestCount > 0 {
		successRate = snap.SuccessRate()
		latencyMs = float64(snap.AvgLatency.Milliseconds())
	}

	score := w.Priority * desc.Priority
	score += w.Reliability * desc.Reliability
	score += w.SuccessRate * successRate
	score += w.Latency * (s.cfg.LatencyBudgetMs - latencyMs) / s.cfg.LatencyBudgetMs
	score += w.Cost * (s.cfg.CostBaseline - desc.CostPerToken) / s.cfg.CostBaseline

	if preferred != "" && desc.Provider == preferred {
		score += w.Preference
	}

	return score
}
