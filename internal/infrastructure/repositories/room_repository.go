package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/database"
)

// RoomRepositoryImpl implements domain.RoomRepository using Redis
type RoomRepositoryImpl struct {
	client *database.RedisClient
	prefix string
}

// NewRoomRepository creates a new room lease repository
func NewRoomRepository(client *database.RedisClient) domain.RoomRepository {
	return &RoomRepositoryImpl{
		client: client,
		prefix: "trtc:room:",
	}
}

func (r *RoomRepositoryImpl) key(roomID uint32) string {
	return r.prefix + strconv.FormatUint(uint64(roomID), 10)
}

// Reserve implements domain.RoomRepository. It reports false when the room
// is already leased.
func (r *RoomRepositoryImpl) Reserve(ctx context.Context, roomID uint32, ttl time.Duration) (bool, error) {
	return database.SetNX(ctx, r.client, r.key(roomID), time.Now().Unix(), ttl)
}

// Renew implements domain.RoomRepository. The lease is written even if it
// already expired.
func (r *RoomRepositoryImpl) Renew(ctx context.Context, roomID uint32, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(roomID), time.Now().Unix(), ttl).Err()
}

// Release implements domain.RoomRepository
func (r *RoomRepositoryImpl) Release(ctx context.Context, roomID uint32) error {
	return r.client.Del(ctx, r.key(roomID)).Err()
}
