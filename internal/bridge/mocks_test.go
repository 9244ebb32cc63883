package bridge

import (
	"context"

	"github.com/appetiteclub/bodbridge/internal/dispatch"
)

// MockDirectoryClient is a test mock for dispatch.Client
type MockDirectoryClient struct {
	Calls           []dispatch.CallDefinition
	Zones           []dispatch.ZoneDefinition
	CreatedRequests []dispatch.CallRequest

	ListCallConfigsFunc func(ctx context.Context) ([]dispatch.CallDefinition, error)
	ListZonesFunc       func(ctx context.Context) ([]dispatch.ZoneDefinition, error)
	CreateCallFunc      func(ctx context.Context, req dispatch.CallRequest) (*dispatch.CreatedCall, error)
}

func NewMockDirectoryClient() *MockDirectoryClient {
	return &MockDirectoryClient{}
}

func (m *MockDirectoryClient) ListCallConfigs(ctx context.Context) ([]dispatch.CallDefinition, error) {
	if m.ListCallConfigsFunc != nil {
		return m.ListCallConfigsFunc(ctx)
	}
	return m.Calls, nil
}

func (m *MockDirectoryClient) ListZones(ctx context.Context) ([]dispatch.ZoneDefinition, error) {
	if m.ListZonesFunc != nil {
		return m.ListZonesFunc(ctx)
	}
	return m.Zones, nil
}

func (m *MockDirectoryClient) CreateCall(ctx context.Context, req dispatch.CallRequest) (*dispatch.CreatedCall, error) {
	if m.CreateCallFunc != nil {
		return m.CreateCallFunc(ctx, req)
	}
	m.CreatedRequests = append(m.CreatedRequests, req)
	return &dispatch.CreatedCall{
		ID:           len(m.CreatedRequests),
		IDCallConfig: req.IDCallConfig,
		IDZone:       req.IDZone,
		Description:  req.Description,
	}, nil
}

// MockZoneResolver is a test mock for bod.ZoneResolver
type MockZoneResolver struct {
	ZoneIDs map[string]int

	ResolveFunc func(ctx context.Context, location string) (*int, error)
}

func NewMockZoneResolver() *MockZoneResolver {
	return &MockZoneResolver{ZoneIDs: make(map[string]int)}
}

func (m *MockZoneResolver) Resolve(ctx context.Context, location string) (*int, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, location)
	}
	if id, ok := m.ZoneIDs[location]; ok {
		return &id, nil
	}
	return nil, nil
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	PublishedEvents []PublishedEvent
	PublishFunc     func(ctx context.Context, topic string, data []byte) error
}

type PublishedEvent struct {
	Topic string
	Data  []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishedEvents: make([]PublishedEvent, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	m.PublishedEvents = append(m.PublishedEvents, PublishedEvent{Topic: topic, Data: data})
	return nil
}
