package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/mocks"
)

func TestCallService_MakeCall(t *testing.T) {
	var got *domain.CallStartup
	gateway := mocks.NewMockCallGateway()
	gateway.StartupFunc = func(ctx context.Context, req *domain.CallStartup) (*domain.CallStartupResult, error) {
		got = req
		return &domain.CallStartupResult{ID: "call-42"}, nil
	}
	var renewed []uint32
	allocator := mocks.NewMockRoomAllocator()
	allocator.RenewFunc = func(ctx context.Context, roomID uint32) error {
		renewed = append(renewed, roomID)
		return nil
	}
	audit := mocks.NewMockAuditLogger()
	svc := createCallServiceForTest(t, gateway, nil, allocator, audit, testCallConfig())

	session := verifiedSession(t, time.Minute)
	result, err := svc.MakeCall(context.Background(), session, testNow)
	require.NoError(t, err)
	assert.Equal(t, "call-42", result.ID)
	assert.Equal(t, []uint32{3000000000}, renewed, "a live call keeps its room leased")

	require.NotNil(t, got)
	assert.Equal(t, domain.TRTCParams{
		SDKAppID: 1400000000,
		UserID:   "tel_13800138000",
		UserSig:  "mock_usersig_tel_13800138000",
		RoomID:   3000000000,
	}, got.TRTCParams)
	assert.Equal(t, "13800138000", got.PhoneNumber)

	notify, err := url.Parse(got.CallStateNotifyURL)
	require.NoError(t, err)
	assert.Equal(t, "demo.example.com", notify.Host)
	assert.Equal(t, "/call_state_notify", notify.Path)
	assert.Equal(t, "3000000000", notify.Query().Get("room_id"))
	assert.Equal(t, "+8613800138000", notify.Query().Get("phone_number"))

	// verification fields are cleared, phone and room are kept
	assert.Empty(t, session.ValidityCode)
	assert.Nil(t, session.IssuedAt)
	assert.Equal(t, "+8613800138000", session.PhoneNumber)
	roomID, ok := session.RoomID()
	assert.True(t, ok)
	assert.Equal(t, uint32(3000000000), roomID)

	assert.Len(t, audit.Events(domain.CallStartedEvent), 1)
}

func TestCallService_MakeCall_WithoutPublicURL(t *testing.T) {
	var got *domain.CallStartup
	gateway := mocks.NewMockCallGateway()
	gateway.StartupFunc = func(ctx context.Context, req *domain.CallStartup) (*domain.CallStartupResult, error) {
		got = req
		return &domain.CallStartupResult{ID: "call-1"}, nil
	}
	config := testCallConfig()
	config.PublicURL = ""
	svc := createCallServiceForTest(t, gateway, nil, nil, nil, config)

	_, err := svc.MakeCall(context.Background(), verifiedSession(t, time.Minute), testNow)
	require.NoError(t, err)
	assert.Empty(t, got.CallStateNotifyURL)
}

func TestCallService_MakeCall_Failures(t *testing.T) {
	tests := []struct {
		name        string
		session     func(t *testing.T) *domain.VerificationSession
		gatewayErr  error
		expectedErr error
	}{
		{
			name:        "empty session",
			session:     func(t *testing.T) *domain.VerificationSession { return &domain.VerificationSession{} },
			expectedErr: domain.ErrSessionMissing,
		},
		{
			name:        "code not yet checked",
			session:     func(t *testing.T) *domain.VerificationSession { return pendingSession(t, time.Minute) },
			expectedErr: domain.ErrSessionMissing,
		},
		{
			name: "call already placed",
			session: func(t *testing.T) *domain.VerificationSession {
				s := verifiedSession(t, time.Minute)
				s.ClearVerification()
				return s
			},
			expectedErr: domain.ErrSessionMissing,
		},
		{
			name:        "expired",
			session:     func(t *testing.T) *domain.VerificationSession { return verifiedSession(t, 601*time.Second) },
			expectedErr: domain.ErrCodeExpired,
		},
		{
			name:        "gateway rejection",
			session:     func(t *testing.T) *domain.VerificationSession { return verifiedSession(t, time.Minute) },
			gatewayErr:  &domain.GatewayRejection{StatusCode: 400, Message: "bad number"},
			expectedErr: &domain.GatewayRejection{StatusCode: 400, Message: "bad number"},
		},
		{
			name:        "gateway unavailable",
			session:     func(t *testing.T) *domain.VerificationSession { return verifiedSession(t, time.Minute) },
			gatewayErr:  fmt.Errorf("%w: unexpected status 502", domain.ErrGatewayUnavailable),
			expectedErr: domain.ErrGatewayUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			gateway := mocks.NewMockCallGateway()
			gateway.StartupFunc = func(ctx context.Context, req *domain.CallStartup) (*domain.CallStartupResult, error) {
				called = true
				return nil, tt.gatewayErr
			}
			allocator := mocks.NewMockRoomAllocator()
			allocator.RenewFunc = func(ctx context.Context, roomID uint32) error {
				t.Fatal("lease must not be renewed without a call")
				return nil
			}
			audit := mocks.NewMockAuditLogger()
			svc := createCallServiceForTest(t, gateway, nil, allocator, audit, testCallConfig())

			session := tt.session(t)
			codeBefore := session.ValidityCode
			_, err := svc.MakeCall(context.Background(), session, testNow)

			var rejection *domain.GatewayRejection
			if errors.As(tt.expectedErr, &rejection) {
				var gotRejection *domain.GatewayRejection
				require.ErrorAs(t, err, &gotRejection)
				assert.Equal(t, rejection, gotRejection)
			} else {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
			assert.Equal(t, codeBefore, session.ValidityCode, "failed calls keep the session")
			assert.Equal(t, tt.gatewayErr != nil, called)
			if called {
				assert.Len(t, audit.Events(domain.CallFailedEvent), 1)
			} else {
				assert.Empty(t, audit.Events(domain.CallFailedEvent))
			}
		})
	}
}

func TestCallService_ExitRoom(t *testing.T) {
	var dismissed []uint32
	var ignored [][]string
	rooms := mocks.NewMockRoomService()
	rooms.DismissRoomFunc = func(ctx context.Context, roomID uint32, ignoreCodes ...string) error {
		dismissed = append(dismissed, roomID)
		ignored = append(ignored, ignoreCodes)
		return nil
	}
	var released []uint32
	allocator := mocks.NewMockRoomAllocator()
	allocator.ReleaseFunc = func(ctx context.Context, roomID uint32) error {
		released = append(released, roomID)
		return nil
	}
	svc := createCallServiceForTest(t, nil, rooms, allocator, nil, testCallConfig())

	session := verifiedSession(t, time.Minute)
	require.NoError(t, svc.ExitRoom(context.Background(), session))
	// a second exit for the same room is harmless
	require.NoError(t, svc.ExitRoom(context.Background(), session))

	assert.Equal(t, []uint32{3000000000, 3000000000}, dismissed)
	assert.Equal(t, []string{domain.CodeRoomNotExist}, ignored[0])
	assert.Equal(t, []uint32{3000000000, 3000000000}, released)

	err := svc.ExitRoom(context.Background(), &domain.VerificationSession{PhoneNumber: "+8613800138000"})
	assert.ErrorIs(t, err, domain.ErrSessionMissing)
}

func TestCallService_MakeCall_RenewFailureIsIgnored(t *testing.T) {
	allocator := mocks.NewMockRoomAllocator()
	allocator.RenewFunc = func(ctx context.Context, roomID uint32) error {
		return errors.New("redis down")
	}
	svc := createCallServiceForTest(t, nil, nil, allocator, nil, testCallConfig())

	_, err := svc.MakeCall(context.Background(), verifiedSession(t, time.Minute), testNow)
	assert.NoError(t, err)
}

func TestCallService_ExitRoom_AfterNewCodeRequest(t *testing.T) {
	tests := []struct {
		name     string
		session  func(t *testing.T) *domain.VerificationSession
		expected []uint32
	}{
		{
			name: "code re-requested after call",
			session: func(t *testing.T) *domain.VerificationSession {
				s := verifiedSession(t, time.Minute)
				s.ClearVerification()
				s.Arm("+8613800138000", "111111", testNow)
				return s
			},
			expected: []uint32{3000000000},
		},
		{
			name: "verified again into a new room",
			session: func(t *testing.T) *domain.VerificationSession {
				s := verifiedSession(t, time.Minute)
				s.Arm("+8613800138000", "111111", testNow)
				s.TRTC = &domain.TRTCParams{RoomID: 3000000001}
				return s
			},
			expected: []uint32{3000000001, 3000000000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dismissed []uint32
			rooms := mocks.NewMockRoomService()
			rooms.DismissRoomFunc = func(ctx context.Context, roomID uint32, ignoreCodes ...string) error {
				dismissed = append(dismissed, roomID)
				return nil
			}
			svc := createCallServiceForTest(t, nil, rooms, nil, nil, testCallConfig())

			session := tt.session(t)
			require.NoError(t, svc.ExitRoom(context.Background(), session))
			assert.Equal(t, tt.expected, dismissed)

			// the old room can never be used to place a call
			_, err := svc.MakeCall(context.Background(), session, testNow)
			if session.TRTC == nil {
				assert.ErrorIs(t, err, domain.ErrSessionMissing)
			}
		})
	}
}

func TestCallService_ExitRoom_ProviderError(t *testing.T) {
	providerErr := &domain.ProviderError{Provider: "trtc", Operation: "TRTC DismissRoomRequest", Code: "InternalError", Message: "boom"}
	rooms := mocks.NewMockRoomService()
	rooms.DismissRoomFunc = func(ctx context.Context, roomID uint32, ignoreCodes ...string) error {
		return providerErr
	}
	allocator := mocks.NewMockRoomAllocator()
	allocator.ReleaseFunc = func(ctx context.Context, roomID uint32) error {
		t.Fatal("lease must be kept when the room could not be dismissed")
		return nil
	}
	audit := mocks.NewMockAuditLogger()
	svc := createCallServiceForTest(t, nil, rooms, allocator, audit, testCallConfig())

	err := svc.ExitRoom(context.Background(), verifiedSession(t, time.Minute))
	assert.ErrorIs(t, err, providerErr)

	events := audit.Events(domain.RoomDismissedEvent)
	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
}

func TestCallService_HandleCallState(t *testing.T) {
	tests := []struct {
		name          string
		state         string
		expectDismiss bool
	}{
		{name: "disconnected", state: domain.CallStateDisconnected, expectDismiss: true},
		{name: "ringing", state: "RINGING", expectDismiss: false},
		{name: "connected", state: "CONNECTED", expectDismiss: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dismissed []uint32
			rooms := mocks.NewMockRoomService()
			rooms.DismissRoomFunc = func(ctx context.Context, roomID uint32, ignoreCodes ...string) error {
				dismissed = append(dismissed, roomID)
				assert.Contains(t, ignoreCodes, domain.CodeRoomNotExist)
				return nil
			}
			audit := mocks.NewMockAuditLogger()
			svc := createCallServiceForTest(t, nil, rooms, nil, audit, testCallConfig())

			err := svc.HandleCallState(context.Background(), &domain.CallStateEvent{
				RoomID:      3000000000,
				PhoneNumber: "+8613800138000",
				StateText:   tt.state,
				Raw:         map[string]interface{}{"state_text": tt.state},
			})
			require.NoError(t, err)

			if tt.expectDismiss {
				assert.Equal(t, []uint32{3000000000}, dismissed)
			} else {
				assert.Empty(t, dismissed)
			}
			assert.Len(t, audit.Events(domain.CallStateNotifiedEvent), 1)
		})
	}
}
