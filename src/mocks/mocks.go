package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

// MockProviderClient implements models.ProviderClient
type MockProviderClient struct {
	mock.Mock

	ProviderName string
}

func (m *MockProviderClient) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockProviderClient) Execute(ctx context.Context, task models.TaskType, payload string, model string) (*models.ProviderResult, error) {
	args := m.Called(ctx, task, payload, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderResult), args.Error(1)
}

func (m *MockProviderClient) HealthCheck(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// MockCache implements models.CacheStore
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (*models.RoutingResponse, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoutingResponse), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, response *models.RoutingResponse) error {
	args := m.Called(ctx, key, response)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRouter implements models.RequestRouter
type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Route(ctx context.Context, req *models.RoutingRequest) (*models.RoutingResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoutingResponse), args.Error(1)
}

func (m *MockRouter) MetricsSnapshot() map[string]*models.MetricsSnapshot {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]*models.MetricsSnapshot)
}

func (m *MockRouter) AvailableModels() []*models.ModelDescriptor {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.ModelDescriptor)
}

func (m *MockRouter) SwitchPreferredProvider(provider string) error {
	args := m.Called(provider)
	return args.Error(0)
}

func (m *MockRouter) ProviderHealth(ctx context.Context) map[string]bool {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]bool)
}
