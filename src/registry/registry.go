package registry

import (
	"fmt"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

var validTasks = map[models.TaskType]bool{
	models.TaskCompletion: true,
	models.TaskChat:       true,
	models.TaskEmbedding:  true,
	models.TaskAnalysis:   true,
	models.TaskCreative:   true,
}

// ModelRegistry is the static catalog of model descriptors. It is built once
// at startup and read-only afterwards, so concurrent reads need no locking.
type ModelRegistry struct {
	descriptors []*models.ModelDescriptor
	byTask      map[models.TaskType][]*models.ModelDescriptor
	byKey       map[string]*models.ModelDescriptor
	providers   []string
}

func NewModelRegistry(modelCfgs []config.ModelConfig) (*ModelRegistry, error) {
	if len(modelCfgs) == 0 {
		return nil, fmt.Errorf("no models configured")
	}

	r := &ModelRegistry{
		descriptors: make([]*models.ModelDescriptor, 0, len(modelCfgs)),
		byTask:      make(map[models.TaskType][]*models.ModelDescriptor),
		byKey:       make(map[string]*models.ModelDescriptor, len(modelCfgs)),
	}

	seenProviders := make(map[string]bool)

	for _, mc := range modelCfgs {
		caps := make([]models.TaskType, 0, len(mc.Capabilities))
		for _, c := range mc.Capabilities {
			task := models.TaskType(c)
			if !validTasks[task] {
				return nil, fmt.Errorf("model %s/%s advertises unknown capability %q", mc.Provider, mc.Model, c)
			}
			caps = append(caps, task)
		}

		desc := &models.ModelDescriptor{
			Provider:     mc.Provider,
			Model:        mc.Model,
			Capabilities: caps,
			MaxTokens:    mc.MaxTokens,
			Temperature:  mc.Temperature,
			Priority:     mc.Priority,
			CostPerToken: mc.CostPerToken,
			AvgLatencyMs: mc.AvgLatencyMs,
			Reliability:  mc.Reliability,
		}
		// Zero values mean unset in config
		if desc.MaxTokens == 0 {
			desc.MaxTokens = 1024
		}
		if desc.Temperature == 0 {
			desc.Temperature = 0.7
		}
		if desc.Priority == 0 {
			desc.Priority = 1.0
		}
		if desc.AvgLatencyMs == 0 {
			desc.AvgLatencyMs = 1000
		}
		if desc.Reliability == 0 {
			desc.Reliability = 0.9
		}

		key := desc.Key()
		if _, exists := r.byKey[key]; exists {
			return nil, fmt.Errorf("duplicate model %s in config", key)
		}
		r.byKey[key] = desc
		r.descriptors = append(r.descriptors, desc)

		for _, task := range caps {
			r.byTask[task] = append(r.byTask[task], desc)
		}

		if !seenProviders[desc.Provider] {
			seenProviders[desc.Provider] = true
			r.providers = append(r.providers, desc.Provider)
		}
	}

	return r, nil
}

// Lookup returns the descriptors advertising the given capability, in
// registration order. The returned slice is a copy; callers may reorder it.
func (r *ModelRegistry) Lookup(task models.TaskType) []*models.ModelDescriptor {
	matches := r.byTask[task]
	out := make([]*models.ModelDescriptor, len(matches))
	copy(out, matches)
	return out
}

// All returns every registered descriptor in registration order.
func (r *ModelRegistry) All() []*models.ModelDescriptor {
	out := make([]*models.ModelDescriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Get returns the descriptor for a provider/model pair.
func (r *ModelRegistry) Get(provider, model string) (*models.ModelDescriptor, bool) {
	desc, ok := r.byKey[provider+"/"+model]
	return desc, ok
}

// Providers returns the distinct provider names in registration order.
func (r *ModelRegistry) Providers() []string {
	out := make([]string, len(r.providers))
	copy(out, r.providers)
	return out
}
