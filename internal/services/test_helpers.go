package services

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/mocks"
)

var testNow = time.Unix(1700000000, 0)

func testVerificationConfig() VerificationConfig {
	return VerificationConfig{
		SendTimeout: 45 * time.Second,
		LiveTimeout: 600 * time.Second,
		UserSigTTL:  600 * time.Second,
	}
}

func testCallConfig() CallConfig {
	return CallConfig{
		LiveTimeout: 600 * time.Second,
		UserSigTTL:  600 * time.Second,
		PublicURL:   "https://demo.example.com",
	}
}

// createVerificationServiceForTest creates a VerificationService with mock dependencies for testing
func createVerificationServiceForTest(t *testing.T,
	smsSender domain.SMSSender,
	rooms domain.RoomAllocator,
	audit domain.AuditLogger,
	config VerificationConfig) *VerificationServiceImpl {
	t.Helper()

	if smsSender == nil {
		smsSender = mocks.NewMockSMSSender()
	}
	if rooms == nil {
		rooms = mocks.NewMockRoomAllocator()
	}
	if audit == nil {
		audit = mocks.NewMockAuditLogger()
	}
	return NewVerificationService(smsSender, mocks.NewMockUserSigner(), rooms, audit, config, zap.NewNop())
}

// createCallServiceForTest creates a CallService with mock dependencies for testing
func createCallServiceForTest(t *testing.T,
	gateway domain.CallGateway,
	rooms domain.RoomService,
	allocator domain.RoomAllocator,
	audit domain.AuditLogger,
	config CallConfig) *CallServiceImpl {
	t.Helper()

	if gateway == nil {
		gateway = mocks.NewMockCallGateway()
	}
	if rooms == nil {
		rooms = mocks.NewMockRoomService()
	}
	if allocator == nil {
		allocator = mocks.NewMockRoomAllocator()
	}
	if audit == nil {
		audit = mocks.NewMockAuditLogger()
	}
	return NewCallService(gateway, rooms, allocator, mocks.NewMockUserSigner(), audit, config, zap.NewNop())
}

// pendingSession returns a session whose code was issued ago before testNow
func pendingSession(t *testing.T, ago time.Duration) *domain.VerificationSession {
	t.Helper()

	s := &domain.VerificationSession{}
	s.Arm("+8613800138000", "123456", testNow.Add(-ago))
	return s
}

// verifiedSession returns a pending session that also holds a room
func verifiedSession(t *testing.T, ago time.Duration) *domain.VerificationSession {
	t.Helper()

	s := pendingSession(t, ago)
	s.TRTC = &domain.TRTCParams{
		SDKAppID: 1400000000,
		UserID:   WebUserID(3000000000),
		UserSig:  "web_sig",
		RoomID:   3000000000,
	}
	return s
}
