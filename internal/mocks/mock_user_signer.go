package mocks

import (
	"time"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// MockUserSigner implements domain.UserSigner interface for testing
type MockUserSigner struct {
	SDKAppIDFunc   func() uint64
	GenUserSigFunc func(userID string, expire time.Duration) (string, error)
}

// NewMockUserSigner creates a new MockUserSigner with default behaviors
func NewMockUserSigner() *MockUserSigner {
	return &MockUserSigner{}
}

// SDKAppID returns the TRTC application id
func (m *MockUserSigner) SDKAppID() uint64 {
	if m.SDKAppIDFunc != nil {
		return m.SDKAppIDFunc()
	}
	return 1400000000
}

// GenUserSig signs a user id
func (m *MockUserSigner) GenUserSig(userID string, expire time.Duration) (string, error) {
	if m.GenUserSigFunc != nil {
		return m.GenUserSigFunc(userID, expire)
	}
	// Default behavior: deterministic fake signature
	return "mock_usersig_" + userID, nil
}

// Compile-time interface compliance verification
var _ domain.UserSigner = (*MockUserSigner)(nil)
