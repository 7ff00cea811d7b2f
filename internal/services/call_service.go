package services

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

const callStateNotifyPath = "/call_state_notify"

// CallConfig configures call placement
type CallConfig struct {
	LiveTimeout time.Duration
	UserSigTTL  time.Duration
	// PublicURL is the externally reachable base URL of this server. When
	// empty, SIPX is not asked to report call state.
	PublicURL string
}

// CallServiceImpl implements domain.CallService
type CallServiceImpl struct {
	gateway   domain.CallGateway
	rooms     domain.RoomService
	allocator domain.RoomAllocator
	signer    domain.UserSigner
	audit     domain.AuditLogger
	config    CallConfig
	logger    *zap.Logger
}

// NewCallService creates a new call service
func NewCallService(
	gateway domain.CallGateway,
	rooms domain.RoomService,
	allocator domain.RoomAllocator,
	signer domain.UserSigner,
	audit domain.AuditLogger,
	config CallConfig,
	logger *zap.Logger,
) *CallServiceImpl {
	return &CallServiceImpl{
		gateway:   gateway,
		rooms:     rooms,
		allocator: allocator,
		signer:    signer,
		audit:     audit,
		config:    config,
		logger:    logger.Named("call"),
	}
}

// MakeCall implements domain.CallService
func (s *CallServiceImpl) MakeCall(ctx context.Context, session *domain.VerificationSession, now time.Time) (*domain.CallStartupResult, error) {
	roomID, hasRoom := session.RoomID()
	if session.IssuedAt == nil || session.PhoneNumber == "" || !hasRoom {
		return nil, domain.ErrSessionMissing
	}
	if session.Expired(now, s.config.LiveTimeout) {
		return nil, domain.ErrCodeExpired
	}

	national, err := NationalNumber(session.PhoneNumber)
	if err != nil {
		return nil, err
	}

	// Same room as the web participant, different user
	userID := PhoneUserID(national)
	userSig, err := s.signer.GenUserSig(userID, s.config.UserSigTTL)
	if err != nil {
		return nil, err
	}

	req := &domain.CallStartup{
		TRTCParams: domain.TRTCParams{
			SDKAppID: s.signer.SDKAppID(),
			UserID:   userID,
			UserSig:  userSig,
			RoomID:   roomID,
		},
		PhoneNumber:        national,
		CallStateNotifyURL: s.callStateNotifyURL(roomID, session.PhoneNumber),
	}

	s.logger.Info("starting call", zap.String("phone", session.PhoneNumber), zap.Uint32("room_id", roomID))
	result, err := s.gateway.Startup(ctx, req)
	if err != nil {
		s.logAudit(ctx, domain.NewAuditEvent(domain.CallFailedEvent).
			WithPhone(session.PhoneNumber).
			WithRoom(roomID).
			WithError(err))
		return nil, err
	}

	s.logger.Info("call started",
		zap.String("call_id", result.ID),
		zap.Uint32("room_id", roomID),
		zap.String("phone", session.PhoneNumber))
	if err := s.allocator.Renew(ctx, roomID); err != nil {
		s.logger.Warn("failed to renew room lease", zap.Uint32("room_id", roomID), zap.Error(err))
	}
	s.logAudit(ctx, domain.NewAuditEvent(domain.CallStartedEvent).
		WithPhone(session.PhoneNumber).
		WithRoom(roomID).
		WithMetadata("call_id", result.ID))

	session.ClearVerification()
	return result, nil
}

// ExitRoom implements domain.CallService
// Both the current room and one dropped by a later code request are dismissed.
func (s *CallServiceImpl) ExitRoom(ctx context.Context, session *domain.VerificationSession) error {
	roomIDs := session.ExitRoomIDs()
	if len(roomIDs) == 0 {
		return domain.ErrSessionMissing
	}
	var errs []error
	for _, roomID := range roomIDs {
		s.logger.Info("web participant left", zap.Uint32("room_id", roomID))
		if err := s.dismiss(ctx, roomID, "exit_room"); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleCallState implements domain.CallService
func (s *CallServiceImpl) HandleCallState(ctx context.Context, event *domain.CallStateEvent) error {
	s.logger.Info("call state notified",
		zap.Uint32("room_id", event.RoomID),
		zap.String("phone", event.PhoneNumber),
		zap.String("state", event.StateText),
		zap.Any("data", event.Raw))
	s.logAudit(ctx, domain.NewAuditEvent(domain.CallStateNotifiedEvent).
		WithPhone(event.PhoneNumber).
		WithRoom(event.RoomID).
		WithMetadata("state_text", event.StateText))

	if !event.Disconnected() {
		return nil
	}
	return s.dismiss(ctx, event.RoomID, "call_state_notify")
}

func (s *CallServiceImpl) dismiss(ctx context.Context, roomID uint32, trigger string) error {
	if err := s.rooms.DismissRoom(ctx, roomID, domain.CodeRoomNotExist); err != nil {
		s.logAudit(ctx, domain.NewAuditEvent(domain.RoomDismissedEvent).
			WithRoom(roomID).
			WithMetadata("trigger", trigger).
			WithError(err))
		return err
	}
	if err := s.allocator.Release(ctx, roomID); err != nil {
		s.logger.Warn("failed to release room lease", zap.Uint32("room_id", roomID), zap.Error(err))
	}
	s.logAudit(ctx, domain.NewAuditEvent(domain.RoomDismissedEvent).
		WithRoom(roomID).
		WithMetadata("trigger", trigger))
	return nil
}

func (s *CallServiceImpl) callStateNotifyURL(roomID uint32, phoneNumber string) string {
	if s.config.PublicURL == "" {
		return ""
	}
	query := url.Values{}
	query.Set("room_id", strconv.FormatUint(uint64(roomID), 10))
	query.Set("phone_number", phoneNumber)
	return s.config.PublicURL + callStateNotifyPath + "?" + query.Encode()
}

func (s *CallServiceImpl) logAudit(ctx context.Context, event *domain.AuditEvent) {
	if err := s.audit.LogEvent(ctx, event); err != nil {
		s.logger.Warn("failed to write audit event", zap.String("event", string(event.EventType)), zap.Error(err))
	}
}

var _ domain.CallService = (*CallServiceImpl)(nil)
