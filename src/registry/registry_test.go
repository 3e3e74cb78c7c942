package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

func testModelConfigs() []config.ModelConfig {
	return []config.ModelConfig{
		{
			Provider:     "openai",
			Model:        "gpt-4o",
			Capabilities: []string{"chat", "completion", "analysis"},
			Priority:     2.0,
			Reliability:  0.99,
		},
		{
			Provider:     "openai",
			Model:        "text-embedding-3-small",
			Capabilities: []string{"embedding"},
			Reliability:  0.99,
		},
		{
			Provider:     "groq",
			Model:        "llama-3.3-70b-versatile",
			Capabilities: []string{"chat", "completion", "creative"},
			Priority:     1.5,
			Reliability:  0.95,
		},
	}
}

func TestModelRegistry_LookupFiltersByCapability(t *testing.T) {
	reg, err := NewModelRegistry(testModelConfigs())
	require.NoError(t, err)

	for _, task := range []models.TaskType{
		models.TaskCompletion, models.TaskChat, models.TaskEmbedding,
		models.TaskAnalysis, models.TaskCreative,
	} {
		for _, desc := range reg.Lookup(task) {
			assert.True(t, desc.Supports(task), "lookup(%s) returned %s which does not support it", task, desc.Key())
		}
	}

	embedders := reg.Lookup(models.TaskEmbedding)
	require.Len(t, embedders, 1)
	assert.Equal(t, "text-embedding-3-small", embedders[0].Model)
}

func TestModelRegistry_LookupPreservesRegistrationOrder(t *testing.T) {
	reg, err := NewModelRegistry(testModelConfigs())
	require.NoError(t, err)

	chat := reg.Lookup(models.TaskChat)
	require.Len(t, chat, 2)
	assert.Equal(t, "gpt-4o", chat[0].Model)
	assert.Equal(t, "llama-3.3-70b-versatile", chat[1].Model)
}

func TestModelRegistry_LookupReturnsCopy(t *testing.T) {
	reg, err := NewModelRegistry(testModelConfigs())
	require.NoError(t, err)

	first := reg.Lookup(models.TaskChat)
	first[0], first[1] = first[1], first[0]

	second := reg.Lookup(models.TaskChat)
	assert.Equal(t, "gpt-4o", second[0].Model, "reordering a lookup result must not affect the registry")
}

func TestModelRegistry_UnknownCapabilityRejected(t *testing.T) {
	_, err := NewModelRegistry([]config.ModelConfig{
		{Provider: "openai", Model: "gpt-4o", Capabilities: []string{"telepathy"}},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown capability")
}

func TestModelRegistry_DuplicateModelRejected(t *testing.T) {
	cfgs := testModelConfigs()
	cfgs = append(cfgs, cfgs[0])

	_, err := NewModelRegistry(cfgs)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate model")
}

func TestModelRegistry_DefaultsApplied(t *testing.T) {
	reg, err := NewModelRegistry([]config.ModelConfig{
		{Provider: "openai", Model: "gpt-4o-mini", Capabilities: []string{"chat"}},
	})
	require.NoError(t, err)

	desc, ok := reg.Get("openai", "gpt-4o-mini")
	require.True(t, ok)
	assert.Equal(t, 1024, desc.MaxTokens)
	assert.InDelta(t, 0.7, float64(desc.Temperature), 0.001)
	assert.InDelta(t, 1.0, desc.Priority, 0.001)
	assert.InDelta(t, 0.9, desc.Reliability, 0.001)
}

func TestModelRegistry_Providers(t *testing.T) {
	reg, err := NewModelRegistry(testModelConfigs())
	require.NoError(t, err)

	assert.Equal(t, []string{"openai", "groq"}, reg.Providers())
}
