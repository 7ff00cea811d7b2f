package mocks

import (
	"context"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// MockSMSSender implements domain.SMSSender interface for testing
type MockSMSSender struct {
	SendValidationCodeFunc func(ctx context.Context, phoneNumber, code string) error
}

// NewMockSMSSender creates a new MockSMSSender with default behaviors
func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{}
}

// SendValidationCode sends a validity code
func (m *MockSMSSender) SendValidationCode(ctx context.Context, phoneNumber, code string) error {
	if m.SendValidationCodeFunc != nil {
		return m.SendValidationCodeFunc(ctx, phoneNumber, code)
	}
	// Default behavior: success (no actual SMS sent in tests)
	return nil
}

// Compile-time interface compliance verification
var _ domain.SMSSender = (*MockSMSSender)(nil)
