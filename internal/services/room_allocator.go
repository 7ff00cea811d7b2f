package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// Room ids are drawn from the upper half of the uint32 range
const (
	MinRoomID           uint32 = 2147483648
	MaxRoomID           uint32 = 4294967294
	maxAllocateAttempts        = 8
)

// RoomAllocatorConfig configures room id allocation
type RoomAllocatorConfig struct {
	// FixedRoomID is returned for every allocation when non-zero
	FixedRoomID uint32
	// LeaseTTL covers a verified room until a call is placed
	LeaseTTL time.Duration
	// CallLeaseTTL covers a room carrying a call; LeaseTTL when zero
	CallLeaseTTL time.Duration
}

// RoomAllocatorImpl implements domain.RoomAllocator. Without a repository
// random ids are handed out unchecked.
type RoomAllocatorImpl struct {
	repo    domain.RoomRepository
	config  RoomAllocatorConfig
	randomN func() (uint32, error)
	logger  *zap.Logger
}

// NewRoomAllocator creates a room allocator; repo may be nil
func NewRoomAllocator(repo domain.RoomRepository, config RoomAllocatorConfig, logger *zap.Logger) *RoomAllocatorImpl {
	return &RoomAllocatorImpl{
		repo:    repo,
		config:  config,
		randomN: randomRoomID,
		logger:  logger.Named("rooms"),
	}
}

// Allocate implements domain.RoomAllocator
func (a *RoomAllocatorImpl) Allocate(ctx context.Context) (uint32, error) {
	if a.config.FixedRoomID != 0 {
		return a.config.FixedRoomID, nil
	}

	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		roomID, err := a.randomN()
		if err != nil {
			return 0, fmt.Errorf("failed to generate room id: %w", err)
		}
		if a.repo == nil {
			return roomID, nil
		}

		ok, err := a.repo.Reserve(ctx, roomID, a.config.LeaseTTL)
		if err != nil {
			// Leases are best effort
			a.logger.Warn("room lease unavailable", zap.Uint32("room_id", roomID), zap.Error(err))
			return roomID, nil
		}
		if ok {
			return roomID, nil
		}
		a.logger.Debug("room id taken", zap.Uint32("room_id", roomID))
	}
	return 0, domain.ErrRoomExhausted
}

// Release implements domain.RoomAllocator
func (a *RoomAllocatorImpl) Release(ctx context.Context, roomID uint32) error {
	if a.repo == nil || roomID == a.config.FixedRoomID {
		return nil
	}
	return a.repo.Release(ctx, roomID)
}

// Renew implements domain.RoomAllocator
func (a *RoomAllocatorImpl) Renew(ctx context.Context, roomID uint32) error {
	if a.repo == nil || roomID == a.config.FixedRoomID {
		return nil
	}
	ttl := a.config.CallLeaseTTL
	if ttl == 0 {
		ttl = a.config.LeaseTTL
	}
	return a.repo.Renew(ctx, roomID, ttl)
}

func randomRoomID() (uint32, error) {
	span := big.NewInt(int64(MaxRoomID-MinRoomID) + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, err
	}
	return MinRoomID + uint32(n.Uint64()), nil
}

// WebUserID is the TRTC user id of the web participant: the 4 byte blake2b
// digest of the decimal room id, hex encoded
func WebUserID(roomID uint32) string {
	h, _ := blake2b.New(4, nil)
	h.Write([]byte(strconv.FormatUint(uint64(roomID), 10)))
	return hex.EncodeToString(h.Sum(nil))
}
