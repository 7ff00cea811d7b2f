package mocks

import (
	"context"
	"time"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// MockRoomRepository implements domain.RoomRepository interface for testing
type MockRoomRepository struct {
	ReserveFunc func(ctx context.Context, roomID uint32, ttl time.Duration) (bool, error)
	RenewFunc   func(ctx context.Context, roomID uint32, ttl time.Duration) error
	ReleaseFunc func(ctx context.Context, roomID uint32) error
}

// NewMockRoomRepository creates a new MockRoomRepository with default behaviors
func NewMockRoomRepository() *MockRoomRepository {
	return &MockRoomRepository{}
}

// Reserve leases a room id
func (m *MockRoomRepository) Reserve(ctx context.Context, roomID uint32, ttl time.Duration) (bool, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, roomID, ttl)
	}
	// Default behavior: always free
	return true, nil
}

// Renew extends a room id lease
func (m *MockRoomRepository) Renew(ctx context.Context, roomID uint32, ttl time.Duration) error {
	if m.RenewFunc != nil {
		return m.RenewFunc(ctx, roomID, ttl)
	}
	return nil
}

// Release drops a room id lease
func (m *MockRoomRepository) Release(ctx context.Context, roomID uint32) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, roomID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.RoomRepository = (*MockRoomRepository)(nil)
