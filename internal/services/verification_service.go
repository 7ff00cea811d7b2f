package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

const validityCodeLength = 6

// VerificationConfig holds the code timing rules
type VerificationConfig struct {
	SendTimeout time.Duration
	LiveTimeout time.Duration
	UserSigTTL  time.Duration
	// DevValidityCode replaces the random code and skips the SMS when set.
	// Never set it in production.
	DevValidityCode string
}

// VerificationServiceImpl implements domain.VerificationService
type VerificationServiceImpl struct {
	smsSender domain.SMSSender
	signer    domain.UserSigner
	rooms     domain.RoomAllocator
	audit     domain.AuditLogger
	config    VerificationConfig
	logger    *zap.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	smsSender domain.SMSSender,
	signer domain.UserSigner,
	rooms domain.RoomAllocator,
	audit domain.AuditLogger,
	config VerificationConfig,
	logger *zap.Logger,
) *VerificationServiceImpl {
	return &VerificationServiceImpl{
		smsSender: smsSender,
		signer:    signer,
		rooms:     rooms,
		audit:     audit,
		config:    config,
		logger:    logger.Named("verification"),
	}
}

// RequestCode implements domain.VerificationService
func (s *VerificationServiceImpl) RequestCode(ctx context.Context, session *domain.VerificationSession, rawPhone string, now time.Time) (*domain.CodeIssued, error) {
	if err := s.CheckResend(session, now); err != nil {
		return nil, err
	}

	phone, err := NormalizeMobile(rawPhone)
	if err != nil {
		return nil, err
	}

	code := s.config.DevValidityCode
	if code != "" {
		s.logger.Debug("using development validity code", zap.String("phone", phone), zap.String("code", code))
	} else {
		code, err = generateSecureCode(validityCodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate validity code: %w", err)
		}
		if err := s.smsSender.SendValidationCode(ctx, phone, code); err != nil {
			s.logAudit(ctx, domain.NewAuditEvent(domain.CodeRequestedEvent).WithPhone(phone).WithError(err))
			return nil, err
		}
		s.logger.Info("validity code sent", zap.String("phone", phone))
	}

	session.Arm(phone, code, now)
	s.logAudit(ctx, domain.NewAuditEvent(domain.CodeRequestedEvent).WithPhone(phone))

	return &domain.CodeIssued{
		SendTimeout: int64(s.config.SendTimeout / time.Second),
		LiveTimeout: int64(s.config.LiveTimeout / time.Second),
	}, nil
}

// CheckResend implements domain.VerificationService
func (s *VerificationServiceImpl) CheckResend(session *domain.VerificationSession, now time.Time) error {
	if session.IssuedAt != nil && session.Age(now) < s.config.SendTimeout {
		return domain.ErrResendTooSoon
	}
	return nil
}

// CheckCode implements domain.VerificationService
func (s *VerificationServiceImpl) CheckCode(ctx context.Context, session *domain.VerificationSession, code string, now time.Time) (*domain.TRTCParams, error) {
	if code == "" {
		return nil, domain.ErrMissingCode
	}
	if !session.HasCode() {
		return nil, domain.ErrSessionMissing
	}
	if session.Expired(now, s.config.LiveTimeout) {
		s.logAudit(ctx, domain.NewAuditEvent(domain.CodeRejectedEvent).WithPhone(session.PhoneNumber).WithError(domain.ErrCodeExpired))
		return nil, domain.ErrCodeExpired
	}
	if code != session.ValidityCode {
		s.logAudit(ctx, domain.NewAuditEvent(domain.CodeRejectedEvent).WithPhone(session.PhoneNumber).WithError(domain.ErrCodeMismatch))
		return nil, domain.ErrCodeMismatch
	}

	roomID, err := s.rooms.Allocate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate room: %w", err)
	}

	userID := WebUserID(roomID)
	userSig, err := s.signer.GenUserSig(userID, s.config.UserSigTTL)
	if err != nil {
		_ = s.rooms.Release(ctx, roomID)
		return nil, fmt.Errorf("failed to sign trtc user: %w", err)
	}

	params := &domain.TRTCParams{
		SDKAppID: s.signer.SDKAppID(),
		UserID:   userID,
		UserSig:  userSig,
		RoomID:   roomID,
	}
	session.TRTC = params

	s.logger.Info("room assigned",
		zap.String("phone", session.PhoneNumber),
		zap.Uint32("room_id", roomID),
		zap.String("user_id", userID))
	s.logAudit(ctx, domain.NewAuditEvent(domain.CodeVerifiedEvent).WithPhone(session.PhoneNumber).WithRoom(roomID))

	return params, nil
}

func (s *VerificationServiceImpl) logAudit(ctx context.Context, event *domain.AuditEvent) {
	if err := s.audit.LogEvent(ctx, event); err != nil {
		s.logger.Warn("failed to write audit event", zap.String("event", string(event.EventType)), zap.Error(err))
	}
}

// generateSecureCode generates a cryptographically secure numeric code
func generateSecureCode(length int) (string, error) {
	digits := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}

var _ domain.VerificationService = (*VerificationServiceImpl)(nil)
