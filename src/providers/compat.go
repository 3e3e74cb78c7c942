package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
	"www.github.com/Wanderer0074348/ModelMux/src/utils"
)

// CompatClient serves providers of kind "openai_compatible": hosted or
// self-hosted endpoints (Groq, vLLM, Ollama) that speak the OpenAI protocol.
type CompatClient struct {
	name           string
	llm            *openai.LLM
	settings       map[string]genSettings
	embeddingModel string
	healthModel    string
}

func NewCompatClient(cfg *config.ProviderConfig, catalog []*models.ModelDescriptor) (*CompatClient, error) {
	opts := []openai.Option{
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithToken(cfg.APIKey),
	}

	// The underlying client carries a single embedding model, so the first
	// embedding-capable catalog entry wins.
	var embeddingModel string
	var healthModel string
	for _, desc := range catalog {
		if desc.Provider != cfg.Name {
			continue
		}
		if embeddingModel == "" && desc.Supports(models.TaskEmbedding) {
			embeddingModel = desc.Model
		}
		if healthModel == "" && textCapable(desc) {
			healthModel = desc.Model
		}
	}
	if embeddingModel != "" {
		opts = append(opts, openai.WithEmbeddingModel(embeddingModel))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI-compatible client: %w", err)
	}

	return &CompatClient{
		name:           cfg.Name,
		llm:            llm,
		settings:       settingsFor(cfg.Name, catalog),
		embeddingModel: embeddingModel,
		healthModel:    healthModel,
	}, nil
}

func textCapable(desc *models.ModelDescriptor) bool {
	return desc.Supports(models.TaskCompletion) || desc.Supports(models.TaskChat) ||
		desc.Supports(models.TaskAnalysis) || desc.Supports(models.TaskCreative)
}

func (c *CompatClient) Name() string {
	return c.name
}

func (c *CompatClient) Execute(ctx context.Context, task models.TaskType, payload string, model string) (*models.ProviderResult, error) {
	if task == models.TaskEmbedding {
		return c.embed(ctx, payload, model)
	}

	prompt := payload
	if system, ok := systemPrompts[task]; ok {
		prompt = system + "\n\n" + payload
	}

	callOptions := []llms.CallOption{
		llms.WithModel(model),
	}
	if s, ok := c.settings[model]; ok {
		if s.temperature > 0 {
			callOptions = append(callOptions, llms.WithTemperature(float64(s.temperature)))
		}
		if s.maxTokens > 0 {
			callOptions = append(callOptions, llms.WithMaxTokens(s.maxTokens))
		}
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, callOptions...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &models.ProviderError{
			Provider:    c.name,
			Model:       model,
			Message:     "generation failed",
			Retryable:   true,
			PartialCost: utils.CalculatePromptCost(model, payload),
			Cause:       err,
		}
	}
	if response == "" {
		return nil, &models.ProviderError{
			Provider:    c.name,
			Model:       model,
			Message:     "empty generation response",
			Retryable:   true,
			PartialCost: utils.CalculatePromptCost(model, payload),
		}
	}

	// Usage is not surfaced through this client, so both sides are estimated.
	inputTokens := utils.EstimateTokenCount(prompt)
	outputTokens := utils.EstimateTokenCount(response)

	return &models.ProviderResult{
		Content:   response,
		Cost:      utils.CalculateCallCost(model, inputTokens, outputTokens),
		TokensIn:  inputTokens,
		TokensOut: outputTokens,
	}, nil
}

func (c *CompatClient) embed(ctx context.Context, payload string, model string) (*models.ProviderResult, error) {
	if model != c.embeddingModel {
		return nil, &models.ProviderError{
			Provider:  c.name,
			Model:     model,
			Message:   "model does not serve embeddings on this provider",
			Retryable: false,
		}
	}

	vectors, err := c.llm.CreateEmbedding(ctx, []string{payload})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &models.ProviderError{
			Provider:  c.name,
			Model:     model,
			Message:   "embedding request failed",
			Retryable: true,
			Cause:     err,
		}
	}
	if len(vectors) == 0 {
		return nil, &models.ProviderError{
			Provider:  c.name,
			Model:     model,
			Message:   "no embedding returned",
			Retryable: true,
		}
	}

	embedding := make([]float64, len(vectors[0]))
	for i, v := range vectors[0] {
		embedding[i] = float64(v)
	}

	tokens := utils.EstimateTokenCount(payload)

	return &models.ProviderResult{
		Embedding: embedding,
		Cost:      utils.CalculateEmbeddingCost(tokens),
		TokensIn:  tokens,
	}, nil
}

// HealthCheck probes the endpoint with a one-token generation. Compatible
// endpoints expose no model-list API through this client, so a minimal call
// is the cheapest signal available.
func (c *CompatClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if c.healthModel == "" && c.embeddingModel != "" {
		_, err := c.llm.CreateEmbedding(ctx, []string{"ping"})
		return err == nil
	}

	callOptions := []llms.CallOption{llms.WithMaxTokens(1)}
	if c.healthModel != "" {
		callOptions = append(callOptions, llms.WithModel(c.healthModel))
	}
	_, err := llms.GenerateFromSinglePrompt(ctx, c.llm, "ping", callOptions...)
	return err == nil
}
