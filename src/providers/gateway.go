package providers

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/oauth2/clientcredentials"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

// NewGatewayClient serves providers of kind "oauth_gateway": enterprise
// gateways that expose the OpenAI protocol behind OAuth2 client-credentials
// auth. Token acquisition and refresh ride on the HTTP transport, which
// replaces the Authorization header on every request, so the returned client
// behaves exactly like the plain OpenAI one.
func NewGatewayClient(cfg *config.ProviderConfig, catalog []*models.ModelDescriptor) *OpenAIClient {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}

	clientCfg := openai.DefaultConfig("")
	clientCfg.BaseURL = cfg.Endpoint
	clientCfg.HTTPClient = cc.Client(context.Background())

	return &OpenAIClient{
		name:     cfg.Name,
		client:   openai.NewClientWithConfig(clientCfg),
		settings: settingsFor(cfg.Name, catalog),
	}
}
