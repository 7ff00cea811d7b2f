package mocks

import (
	"context"
	"time"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// MockCallService implements domain.CallService interface for testing
type MockCallService struct {
	MakeCallFunc        func(ctx context.Context, session *domain.VerificationSession, now time.Time) (*domain.CallStartupResult, error)
	ExitRoomFunc        func(ctx context.Context, session *domain.VerificationSession) error
	HandleCallStateFunc func(ctx context.Context, event *domain.CallStateEvent) error
}

// NewMockCallService creates a new MockCallService with default behaviors
func NewMockCallService() *MockCallService {
	return &MockCallService{}
}

// MakeCall places the outbound call for a verified session
func (m *MockCallService) MakeCall(ctx context.Context, session *domain.VerificationSession, now time.Time) (*domain.CallStartupResult, error) {
	if m.MakeCallFunc != nil {
		return m.MakeCallFunc(ctx, session, now)
	}
	return &domain.CallStartupResult{ID: "mock_call_id"}, nil
}

// ExitRoom dismisses the session's room
func (m *MockCallService) ExitRoom(ctx context.Context, session *domain.VerificationSession) error {
	if m.ExitRoomFunc != nil {
		return m.ExitRoomFunc(ctx, session)
	}
	return nil
}

// HandleCallState processes a SIPX call-state notification
func (m *MockCallService) HandleCallState(ctx context.Context, event *domain.CallStateEvent) error {
	if m.HandleCallStateFunc != nil {
		return m.HandleCallStateFunc(ctx, event)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.CallService = (*MockCallService)(nil)
