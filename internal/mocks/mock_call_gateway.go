package mocks

import (
	"context"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// MockCallGateway implements domain.CallGateway interface for testing
type MockCallGateway struct {
	StartupFunc func(ctx context.Context, req *domain.CallStartup) (*domain.CallStartupResult, error)
}

// NewMockCallGateway creates a new MockCallGateway with default behaviors
func NewMockCallGateway() *MockCallGateway {
	return &MockCallGateway{}
}

// Startup places an outbound call
func (m *MockCallGateway) Startup(ctx context.Context, req *domain.CallStartup) (*domain.CallStartupResult, error) {
	if m.StartupFunc != nil {
		return m.StartupFunc(ctx, req)
	}
	// Default behavior: accepted
	return &domain.CallStartupResult{ID: "mock_call_id"}, nil
}

// Compile-time interface compliance verification
var _ domain.CallGateway = (*MockCallGateway)(nil)
