package zone

import (
	"context"

	"github.com/appetiteclub/bodbridge/internal/dispatch"
)

// MockSource is a test mock for Source
type MockSource struct {
	Payload []byte
	Err     error
	Fetched int

	FetchFunc func(ctx context.Context) ([]byte, error)
}

func NewMockSource(payload []byte) *MockSource {
	return &MockSource{Payload: payload}
}

func (m *MockSource) Name() string {
	return "mock"
}

func (m *MockSource) Fetch(ctx context.Context) ([]byte, error) {
	m.Fetched++
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Payload, nil
}

// MockDirectoryClient is a test mock for dispatch.Client
type MockDirectoryClient struct {
	Zones         []dispatch.ZoneDefinition
	ListZonesFunc func(ctx context.Context) ([]dispatch.ZoneDefinition, error)
}

func NewMockDirectoryClient() *MockDirectoryClient {
	return &MockDirectoryClient{}
}

func (m *MockDirectoryClient) ListCallConfigs(ctx context.Context) ([]dispatch.CallDefinition, error) {
	return nil, nil
}

func (m *MockDirectoryClient) ListZones(ctx context.Context) ([]dispatch.ZoneDefinition, error) {
	if m.ListZonesFunc != nil {
		return m.ListZonesFunc(ctx)
	}
	return m.Zones, nil
}

func (m *MockDirectoryClient) CreateCall(ctx context.Context, req dispatch.CallRequest) (*dispatch.CreatedCall, error) {
	return nil, nil
}
