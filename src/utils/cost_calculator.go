package utils

import (
	"strings"
)

// Pricing per 1M tokens (as of 2025)
const (
	// OpenAI GPT-4o family
	GPT4oInputPer1M      = 2.50
	GPT4oOutputPer1M     = 10.00
	GPT4oMiniInputPer1M  = 0.15
	GPT4oMiniOutputPer1M = 0.60

	// OpenAI GPT-4
	GPT4InputPer1M  = 30.00 // $30 per 1M input tokens
	GPT4OutputPer1M = 60.00 // $60 per 1M output tokens

	// OpenAI GPT-3.5-turbo
	GPT35InputPer1M  = 0.50 // $0.50 per 1M input tokens
	GPT35OutputPer1M = 1.50 // $1.50 per 1M output tokens

	// Open models served through OpenAI-compatible endpoints
	// (estimate for Llama/Mixtral class hosting)
	OpenModelInputPer1M  = 0.10
	OpenModelOutputPer1M = 0.10

	// OpenAI Embeddings
	EmbeddingPer1M = 0.10 // $0.10 per 1M tokens (text-embedding-ada-002)
)

// EstimateTokenCount estimates token count from text (rough approximation)
// More accurate: ~1 token per 4 characters for English
func EstimateTokenCount(text string) int {
	// Remove extra whitespace
	text = strings.TrimSpace(text)

	// Rough estimate: 1 token ≈ 4 characters
	charCount := len(text)
	tokenCount := charCount / 4

	// Add some buffer for special tokens
	if tokenCount < 10 {
		tokenCount = 10
	}

	return tokenCount
}

// modelRates returns per-1M input/output pricing for a model id, matched by
// family substring. Unknown models fall back to GPT-3.5 pricing.
func modelRates(model string) (inputPer1M, outputPer1M float64) {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "gpt-4o-mini"):
		return GPT4oMiniInputPer1M, GPT4oMiniOutputPer1M
	case strings.Contains(m, "gpt-4o"):
		return GPT4oInputPer1M, GPT4oOutputPer1M
	case strings.Contains(m, "gpt-4"):
		return GPT4InputPer1M, GPT4OutputPer1M
	case strings.Contains(m, "gpt-3.5"):
		return GPT35InputPer1M, GPT35OutputPer1M
	case strings.Contains(m, "llama"),
		strings.Contains(m, "mixtral"),
		strings.Contains(m, "qwen"),
		strings.Contains(m, "gemma"):
		return OpenModelInputPer1M, OpenModelOutputPer1M
	default:
		return GPT35InputPer1M, GPT35OutputPer1M
	}
}

// CalculateCallCost calculates the cost of a completed call from its token
// usage. When the upstream API did not report usage, pass estimates from
// EstimateTokenCount.
func CalculateCallCost(model string, inputTokens, outputTokens int) float64 {
	inputRate, outputRate := modelRates(model)
	inputCost := float64(inputTokens) * inputRate / 1000000
	outputCost := float64(outputTokens) * outputRate / 1000000
	return inputCost + outputCost
}

// CalculatePromptCost calculates the input-side cost of a call only. Failed
// calls are attributed this portion, since the prompt tokens were already
// consumed upstream when the call broke.
func CalculatePromptCost(model, payload string) float64 {
	inputRate, _ := modelRates(model)
	return float64(EstimateTokenCount(payload)) * inputRate / 1000000
}

// CalculateEmbeddingCost calculates the cost for generating embeddings
func CalculateEmbeddingCost(tokens int) float64 {
	return float64(tokens) * EmbeddingPer1M / 1000000
}
