package bod

import "context"

// MockZoneResolver is a test mock for ZoneResolver
type MockZoneResolver struct {
	ZoneIDs   map[string]int
	Requested []string

	ResolveFunc func(ctx context.Context, location string) (*int, error)
}

func NewMockZoneResolver() *MockZoneResolver {
	return &MockZoneResolver{ZoneIDs: make(map[string]int)}
}

func (m *MockZoneResolver) Resolve(ctx context.Context, location string) (*int, error) {
	m.Requested = append(m.Requested, location)
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, location)
	}
	if id, ok := m.ZoneIDs[location]; ok {
		return &id, nil
	}
	return nil, nil
}
