package trtc

import (
	"context"
	"errors"
	"slices"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	tcerr "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	trtcapi "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/trtc/v20190722"
	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/tencentcloud"
)

// dismissAPI is the part of the TRTC SDK client used here
type dismissAPI interface {
	DismissRoomWithContext(ctx context.Context, request *trtcapi.DismissRoomRequest) (*trtcapi.DismissRoomResponse, error)
}

// RoomServiceImpl implements domain.RoomService on the TRTC cloud API
type RoomServiceImpl struct {
	api      dismissAPI
	sdkAppID uint64
	logger   *zap.Logger
}

// NewRoomService creates a TRTC room service for one application.
// endpoint may be empty to use the public TRTC API.
func NewRoomService(account tencentcloud.Account, endpoint string, sdkAppID uint64, logger *zap.Logger) (*RoomServiceImpl, error) {
	client, err := trtcapi.NewClient(account.Credential(), account.Region, tencentcloud.ClientProfile(endpoint))
	if err != nil {
		return nil, err
	}
	return newRoomService(client, sdkAppID, logger), nil
}

func newRoomService(api dismissAPI, sdkAppID uint64, logger *zap.Logger) *RoomServiceImpl {
	return &RoomServiceImpl{
		api:      api,
		sdkAppID: sdkAppID,
		logger:   logger.Named("trtc"),
	}
}

// DismissRoom implements domain.RoomService
func (s *RoomServiceImpl) DismissRoom(ctx context.Context, roomID uint32, ignoreCodes ...string) error {
	req := trtcapi.NewDismissRoomRequest()
	req.SdkAppId = common.Uint64Ptr(s.sdkAppID)
	req.RoomId = common.Uint64Ptr(uint64(roomID))

	s.logger.Debug("dismissing room", zap.Uint64("sdk_app_id", s.sdkAppID), zap.Uint32("room_id", roomID))

	_, err := s.api.DismissRoomWithContext(ctx, req)
	if err == nil {
		return nil
	}

	var sdkErr *tcerr.TencentCloudSDKError
	if !errors.As(err, &sdkErr) {
		s.logger.Warn("dismiss room failed", zap.Uint32("room_id", roomID), zap.Error(err))
		return &domain.ProviderError{
			Provider:  "trtc",
			Operation: "TRTC DismissRoomRequest",
			Code:      "ClientError",
			Message:   err.Error(),
		}
	}

	if slices.Contains(ignoreCodes, sdkErr.GetCode()) {
		s.logger.Debug("ignored dismiss room error",
			zap.Uint32("room_id", roomID),
			zap.String("code", sdkErr.GetCode()),
			zap.String("message", sdkErr.GetMessage()))
		return nil
	}

	s.logger.Warn("dismiss room failed",
		zap.Uint32("room_id", roomID),
		zap.String("code", sdkErr.GetCode()),
		zap.String("message", sdkErr.GetMessage()),
		zap.String("request_id", sdkErr.GetRequestId()))
	return &domain.ProviderError{
		Provider:  "trtc",
		Operation: "TRTC DismissRoomRequest",
		Code:      sdkErr.GetCode(),
		Message:   sdkErr.GetMessage(),
	}
}
