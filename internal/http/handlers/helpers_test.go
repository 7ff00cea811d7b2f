package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/http/middleware"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/auth"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/mocks"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/services"
)

const testCookieName = "session"

// testClock is a settable wall clock shared by handlers and the session codec
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// testServer wires the real services to mock adapters behind the call handlers
type testServer struct {
	t       *testing.T
	engine  *gin.Engine
	clock   *testClock
	cookies map[string]*http.Cookie

	SMS     *mocks.MockSMSSender
	Gateway *mocks.MockCallGateway
	Rooms   *mocks.MockRoomService
	Audit   *mocks.MockAuditLogger

	sentCodes []string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		t:       t,
		clock:   &testClock{now: time.Unix(1700000000, 0)},
		cookies: map[string]*http.Cookie{},
		SMS:     mocks.NewMockSMSSender(),
		Gateway: mocks.NewMockCallGateway(),
		Rooms:   mocks.NewMockRoomService(),
		Audit:   mocks.NewMockAuditLogger(),
	}
	s.SMS.SendValidationCodeFunc = func(_ context.Context, phoneNumber, code string) error {
		s.sentCodes = append(s.sentCodes, code)
		return nil
	}

	codec, err := auth.NewJWTSessionCodec("test-secret", 24*time.Hour, s.clock.Now)
	require.NoError(t, err)
	sessions := middleware.NewSessions(codec, middleware.CookieConfig{
		Name:     testCookieName,
		Path:     "/",
		Lifetime: 24 * time.Hour,
	}, zap.NewNop())

	signer := mocks.NewMockUserSigner()
	allocator := mocks.NewMockRoomAllocator()
	verification := services.NewVerificationService(s.SMS, signer, allocator, s.Audit, services.VerificationConfig{
		SendTimeout: 45 * time.Second,
		LiveTimeout: 600 * time.Second,
		UserSigTTL:  600 * time.Second,
	}, zap.NewNop())
	calls := services.NewCallService(s.Gateway, s.Rooms, allocator, signer, s.Audit, services.CallConfig{
		LiveTimeout: 600 * time.Second,
		UserSigTTL:  600 * time.Second,
		PublicURL:   "https://demo.example.com",
	}, zap.NewNop())

	h := NewCallHandlers(verification, calls, sessions)
	h.now = s.clock.Now

	r := gin.New()
	r.Use(sessions.Load())
	r.POST("/sms_code", h.SMSCode)
	r.POST("/enter_room", h.EnterRoom)
	r.POST("/make_call", h.MakeCall)
	r.POST("/exit_room", h.ExitRoom)
	r.POST("/call_state_notify", h.CallStateNotify)
	s.engine = r
	return s
}

// do sends a request carrying the stored cookies and keeps the ones set in the answer
func (s *testServer) do(method, target string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(s.cookies, c.Name)
			continue
		}
		s.cookies[c.Name] = c
	}
	return w
}

// lastCode returns the most recent code handed to the SMS sender
func (s *testServer) lastCode() string {
	s.t.Helper()
	require.NotEmpty(s.t, s.sentCodes, "no code was sent")
	return s.sentCodes[len(s.sentCodes)-1]
}

// verify runs the code request and code check steps
func (s *testServer) verify() map[string]interface{} {
	s.t.Helper()

	w := s.do(http.MethodPost, "/sms_code", map[string]string{"phoneNumber": "13800138000"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/enter_room", map[string]string{"smsCode": s.lastCode()})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var params map[string]interface{}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &params))
	return params
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body["error"]
}
