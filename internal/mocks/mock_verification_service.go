package mocks

import (
	"context"
	"time"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// MockVerificationService implements domain.VerificationService interface for testing
type MockVerificationService struct {
	CheckResendFunc func(session *domain.VerificationSession, now time.Time) error
	RequestCodeFunc func(ctx context.Context, session *domain.VerificationSession, rawPhone string, now time.Time) (*domain.CodeIssued, error)
	CheckCodeFunc   func(ctx context.Context, session *domain.VerificationSession, code string, now time.Time) (*domain.TRTCParams, error)
}

// NewMockVerificationService creates a new MockVerificationService with default behaviors
func NewMockVerificationService() *MockVerificationService {
	return &MockVerificationService{}
}

// CheckResend reports whether a new code may be sent
func (m *MockVerificationService) CheckResend(session *domain.VerificationSession, now time.Time) error {
	if m.CheckResendFunc != nil {
		return m.CheckResendFunc(session, now)
	}
	return nil
}

// RequestCode issues a validity code
func (m *MockVerificationService) RequestCode(ctx context.Context, session *domain.VerificationSession, rawPhone string, now time.Time) (*domain.CodeIssued, error) {
	if m.RequestCodeFunc != nil {
		return m.RequestCodeFunc(ctx, session, rawPhone, now)
	}
	session.Arm(rawPhone, "000000", now)
	return &domain.CodeIssued{SendTimeout: 45, LiveTimeout: 600}, nil
}

// CheckCode verifies a validity code
func (m *MockVerificationService) CheckCode(ctx context.Context, session *domain.VerificationSession, code string, now time.Time) (*domain.TRTCParams, error) {
	if m.CheckCodeFunc != nil {
		return m.CheckCodeFunc(ctx, session, code, now)
	}
	return nil, domain.ErrCodeMismatch
}

// Compile-time interface compliance verification
var _ domain.VerificationService = (*MockVerificationService)(nil)
