package providers

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
	"www.github.com/Wanderer0074348/ModelMux/src/utils"
)

const healthCheckTimeout = 5 * time.Second

// OpenAIClient serves providers of kind "openai": the OpenAI API itself, or
// any endpoint speaking its protocol with plain API-key auth.
type OpenAIClient struct {
	name     string
	client   *openai.Client
	settings map[string]genSettings
}

func NewOpenAIClient(cfg *config.ProviderConfig, catalog []*models.ModelDescriptor) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	return &OpenAIClient{
		name:     cfg.Name,
		client:   openai.NewClientWithConfig(clientCfg),
		settings: settingsFor(cfg.Name, catalog),
	}
}

func (c *OpenAIClient) Name() string {
	return c.name
}

func (c *OpenAIClient) Execute(ctx context.Context, task models.TaskType, payload string, model string) (*models.ProviderResult, error) {
	if task == models.TaskEmbedding {
		return c.embed(ctx, payload, model)
	}
	return c.complete(ctx, task, payload, model)
}

func (c *OpenAIClient) complete(ctx context.Context, task models.TaskType, payload string, model string) (*models.ProviderResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system, ok := systemPrompts[task]; ok {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: payload,
	})

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if s, ok := c.settings[model]; ok {
		req.MaxTokens = s.maxTokens
		req.Temperature = s.temperature
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		// Context errors pass through raw so the router can tell a
		// deadline from a parent cancellation.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &models.ProviderError{
			Provider:    c.name,
			Model:       model,
			Message:     "chat completion failed",
			Retryable:   true,
			PartialCost: utils.CalculatePromptCost(model, payload),
			Cause:       err,
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &models.ProviderError{
			Provider:    c.name,
			Model:       model,
			Message:     "empty completion response",
			Retryable:   true,
			PartialCost: utils.CalculatePromptCost(model, payload),
		}
	}

	content := resp.Choices[0].Message.Content
	inputTokens := resp.Usage.PromptTokens
	outputTokens := resp.Usage.CompletionTokens
	if inputTokens == 0 && outputTokens == 0 {
		inputTokens = utils.EstimateTokenCount(payload)
		outputTokens = utils.EstimateTokenCount(content)
	}

	return &models.ProviderResult{
		Content:   content,
		Cost:      utils.CalculateCallCost(model, inputTokens, outputTokens),
		TokensIn:  inputTokens,
		TokensOut: outputTokens,
	}, nil
}

func (c *OpenAIClient) embed(ctx context.Context, payload string, model string) (*models.ProviderResult, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{payload},
		Model: openai.EmbeddingModel(model),
	})
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
	if len(resp.Data) == 0 {
		return nil, &models.ProviderError{
			Provider:  c.name,
			Model:     model,
			Message:   "no embedding returned",
			Retryable: true,
		}
	}

	embedding := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		embedding[i] = float64(v)
	}

	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		tokens = utils.EstimateTokenCount(payload)
	}

	return &models.ProviderResult{
		Embedding: embedding,
		Cost:      utils.CalculateEmbeddingCost(tokens),
		TokensIn:  tokens,
	}, nil
}

func (c *OpenAIClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	_, err := c.client.ListModels(ctx)
	return err == nil
}
