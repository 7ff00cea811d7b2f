package mocks

import (
	"context"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// MockRoomAllocator implements domain.RoomAllocator interface for testing
type MockRoomAllocator struct {
	AllocateFunc func(ctx context.Context) (uint32, error)
	ReleaseFunc  func(ctx context.Context, roomID uint32) error
	RenewFunc    func(ctx context.Context, roomID uint32) error
}

// NewMockRoomAllocator creates a new MockRoomAllocator with default behaviors
func NewMockRoomAllocator() *MockRoomAllocator {
	return &MockRoomAllocator{}
}

// Allocate picks a room id
func (m *MockRoomAllocator) Allocate(ctx context.Context) (uint32, error) {
	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx)
	}
	// Default behavior: a fixed room in the safe range
	return 3000000000, nil
}

// Release frees a room id
func (m *MockRoomAllocator) Release(ctx context.Context, roomID uint32) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, roomID)
	}
	return nil
}

// Renew extends a room id lease
func (m *MockRoomAllocator) Renew(ctx context.Context, roomID uint32) error {
	if m.RenewFunc != nil {
		return m.RenewFunc(ctx, roomID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.RoomAllocator = (*MockRoomAllocator)(nil)
