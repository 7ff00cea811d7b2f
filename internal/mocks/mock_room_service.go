package mocks

import (
	"context"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// MockRoomService implements domain.RoomService interface for testing
type MockRoomService struct {
	DismissRoomFunc func(ctx context.Context, roomID uint32, ignoreCodes ...string) error
}

// NewMockRoomService creates a new MockRoomService with default behaviors
func NewMockRoomService() *MockRoomService {
	return &MockRoomService{}
}

// DismissRoom dismisses a TRTC room
func (m *MockRoomService) DismissRoom(ctx context.Context, roomID uint32, ignoreCodes ...string) error {
	if m.DismissRoomFunc != nil {
		return m.DismissRoomFunc(ctx, roomID, ignoreCodes...)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.RoomService = (*MockRoomService)(nil)
