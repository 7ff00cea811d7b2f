package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/mocks"
)

func sequenceRoomIDs(ids ...uint32) func() (uint32, error) {
	i := 0
	return func() (uint32, error) {
		id := ids[i%len(ids)]
		i++
		return id, nil
	}
}

func TestRoomAllocator_RandomRange(t *testing.T) {
	allocator := NewRoomAllocator(nil, RoomAllocatorConfig{}, zap.NewNop())

	for i := 0; i < 1000; i++ {
		roomID, err := allocator.Allocate(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, roomID, MinRoomID)
		assert.LessOrEqual(t, roomID, MaxRoomID)
	}
}

func TestRoomAllocator_FixedRoom(t *testing.T) {
	repo := mocks.NewMockRoomRepository()
	repo.ReserveFunc = func(ctx context.Context, roomID uint32, ttl time.Duration) (bool, error) {
		t.Fatal("fixed rooms are not leased")
		return false, nil
	}
	repo.ReleaseFunc = func(ctx context.Context, roomID uint32) error {
		t.Fatal("fixed rooms are not released")
		return nil
	}
	repo.RenewFunc = func(ctx context.Context, roomID uint32, ttl time.Duration) error {
		t.Fatal("fixed rooms are not renewed")
		return nil
	}
	allocator := NewRoomAllocator(repo, RoomAllocatorConfig{FixedRoomID: 1001}, zap.NewNop())

	roomID, err := allocator.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(1001), roomID)
	assert.NoError(t, allocator.Release(context.Background(), 1001))
	assert.NoError(t, allocator.Renew(context.Background(), 1001))
}

func TestRoomAllocator_WithLeases(t *testing.T) {
	tests := []struct {
		name        string
		taken       map[uint32]bool
		reserveErr  error
		expected    uint32
		expectedErr error
	}{
		{
			name:     "first candidate free",
			taken:    map[uint32]bool{},
			expected: 3000000001,
		},
		{
			name:     "skips taken candidates",
			taken:    map[uint32]bool{3000000001: true, 3000000002: true},
			expected: 3000000003,
		},
		{
			name:        "all candidates taken",
			taken:       map[uint32]bool{3000000001: true, 3000000002: true, 3000000003: true},
			expectedErr: domain.ErrRoomExhausted,
		},
		{
			name:       "repository down falls back to unleased id",
			reserveErr: errors.New("connection refused"),
			expected:   3000000001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ttls []time.Duration
			repo := mocks.NewMockRoomRepository()
			repo.ReserveFunc = func(ctx context.Context, roomID uint32, ttl time.Duration) (bool, error) {
				ttls = append(ttls, ttl)
				if tt.reserveErr != nil {
					return false, tt.reserveErr
				}
				return !tt.taken[roomID], nil
			}

			allocator := NewRoomAllocator(repo, RoomAllocatorConfig{LeaseTTL: 20 * time.Minute}, zap.NewNop())
			allocator.randomN = sequenceRoomIDs(3000000001, 3000000002, 3000000003)

			roomID, err := allocator.Allocate(context.Background())
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Len(t, ttls, maxAllocateAttempts)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, roomID)
			for _, ttl := range ttls {
				assert.Equal(t, 20*time.Minute, ttl)
			}
		})
	}
}

func TestRoomAllocator_Release(t *testing.T) {
	var released []uint32
	repo := mocks.NewMockRoomRepository()
	repo.ReleaseFunc = func(ctx context.Context, roomID uint32) error {
		released = append(released, roomID)
		return nil
	}
	allocator := NewRoomAllocator(repo, RoomAllocatorConfig{}, zap.NewNop())

	require.NoError(t, allocator.Release(context.Background(), 3000000000))
	assert.Equal(t, []uint32{3000000000}, released)

	assert.NoError(t, NewRoomAllocator(nil, RoomAllocatorConfig{}, zap.NewNop()).Release(context.Background(), 1))
}

func TestRoomAllocator_Renew(t *testing.T) {
	tests := []struct {
		name        string
		config      RoomAllocatorConfig
		expectedTTL time.Duration
	}{
		{
			name:        "call lease ttl",
			config:      RoomAllocatorConfig{LeaseTTL: 20 * time.Minute, CallLeaseTTL: 4 * time.Hour},
			expectedTTL: 4 * time.Hour,
		},
		{
			name:        "falls back to lease ttl",
			config:      RoomAllocatorConfig{LeaseTTL: 20 * time.Minute},
			expectedTTL: 20 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var renewed []time.Duration
			repo := mocks.NewMockRoomRepository()
			repo.RenewFunc = func(ctx context.Context, roomID uint32, ttl time.Duration) error {
				assert.Equal(t, uint32(3000000000), roomID)
				renewed = append(renewed, ttl)
				return nil
			}
			allocator := NewRoomAllocator(repo, tt.config, zap.NewNop())

			require.NoError(t, allocator.Renew(context.Background(), 3000000000))
			assert.Equal(t, []time.Duration{tt.expectedTTL}, renewed)
		})
	}

	assert.NoError(t, NewRoomAllocator(nil, RoomAllocatorConfig{}, zap.NewNop()).Renew(context.Background(), 1))
}

func TestWebUserID(t *testing.T) {
	tests := []struct {
		roomID   uint32
		expected string
	}{
		{3000000000, "acf89371"},
		{1001, "bfed4fed"},
		{2147483648, "4dc6e264"},
	}

	for _, tt := range tests {
		got := WebUserID(tt.roomID)
		assert.Equal(t, tt.expected, got)
		assert.Len(t, got, 8)
		assert.NotEqual(t, PhoneUserID("13800138000"), got)
	}
}
