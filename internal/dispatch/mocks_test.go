package dispatch

import "context"

// MockDirectoryClient is a test mock for Client
type MockDirectoryClient struct {
	Calls           []CallDefinition
	Zones           []ZoneDefinition
	CreatedRequests []CallRequest

	ListCallConfigsFunc func(ctx context.Context) ([]CallDefinition, error)
	ListZonesFunc       func(ctx context.Context) ([]ZoneDefinition, error)
	CreateCallFunc      func(ctx context.Context, req CallRequest) (*CreatedCall, error)
}

func NewMockDirectoryClient() *MockDirectoryClient {
	return &MockDirectoryClient{}
}

func (m *MockDirectoryClient) ListCallConfigs(ctx context.Context) ([]CallDefinition, error) {
	if m.ListCallConfigsFunc != nil {
		return m.ListCallConfigsFunc(ctx)
	}
	return m.Calls, nil
}

func (m *MockDirectoryClient) ListZones(ctx context.Context) ([]ZoneDefinition, error) {
	if m.ListZonesFunc != nil {
		return m.ListZonesFunc(ctx)
	}
	return m.Zones, nil
}

func (m *MockDirectoryClient) CreateCall(ctx context.Context, req CallRequest) (*CreatedCall, error) {
	if m.CreateCallFunc != nil {
		return m.CreateCallFunc(ctx, req)
	}
	m.CreatedRequests = append(m.CreatedRequests, req)
	return &CreatedCall{
		ID:           len(m.CreatedRequests),
		IDCallConfig: req.IDCallConfig,
		IDZone:       req.IDZone,
		Description:  req.Description,
	}, nil
}
