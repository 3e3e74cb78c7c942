package providers

import (
	"fmt"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

// systemPrompts steer chat-style models per capability. Completion and chat
// payloads pass through untouched.
var systemPrompts = map[models.TaskType]string{
	models.TaskAnalysis: "You are an analysis engine. Examine the input and report key findings, supporting evidence, and a short conclusion.",
	models.TaskCreative: "You are a creative writer. Respond with original, vivid prose and do not explain your choices.",
}

// genSettings holds per-model generation parameters captured from the
// catalog at construction time.
type genSettings struct {
	maxTokens   int
	temperature float32
}

func settingsFor(provider string, catalog []*models.ModelDescriptor) map[string]genSettings {
	settings := make(map[string]genSettings)
	for _, desc := range catalog {
		if desc.Provider != provider {
			continue
		}
		settings[desc.Model] = genSettings{
			maxTokens:   desc.MaxTokens,
			temperature: desc.Temperature,
		}
	}
	return settings
}

// BuildClients constructs one client per configured provider, keyed by
// provider name. Generation settings come from the catalog entries
// registered against each provider.
func BuildClients(providerCfgs []config.ProviderConfig, catalog []*models.ModelDescriptor) (map[string]models.ProviderClient, error) {
	clients := make(map[string]models.ProviderClient, len(providerCfgs))

	for i := range providerCfgs {
		cfg := &providerCfgs[i]

		var (
			client models.ProviderClient
			err    error
		)
		switch cfg.Kind {
		case config.ProviderKindOpenAI:
			client = NewOpenAIClient(cfg, catalog)
		case config.ProviderKindCompat:
			client, err = NewCompatClient(cfg, catalog)
		case config.ProviderKindGateway:
			client = NewGatewayClient(cfg, catalog)
		default:
			return nil, fmt.Errorf("unknown provider kind %q for provider %s", cfg.Kind, cfg.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create client for provider %s: %w", cfg.Name, err)
		}

		clients[cfg.Name] = client
	}

	return clients, nil
}
