package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/http/middleware"
)

// CallHandlers handles the click-to-call workflow requests
type CallHandlers struct {
	verificationSvc domain.VerificationService
	callSvc         domain.CallService
	sessions        *middleware.Sessions
	now             func() time.Time
}

// NewCallHandlers creates new call handlers
func NewCallHandlers(verificationSvc domain.VerificationService, callSvc domain.CallService, sessions *middleware.Sessions) *CallHandlers {
	return &CallHandlers{
		verificationSvc: verificationSvc,
		callSvc:         callSvc,
		sessions:        sessions,
		now:             time.Now,
	}
}

// SMSCodeRequest represents a validity code request
type SMSCodeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// EnterRoomRequest represents a validity code submission. SMSCode is left
// loosely typed: a number or any other non-string value is a wrong code, not
// a malformed request.
type EnterRoomRequest struct {
	SMSCode interface{} `json:"smsCode"`
}

// unmatchableCode stands in for a non-string smsCode. Issued codes are
// digits, so it never matches.
const unmatchableCode = "\xff"

// Code returns the submitted code, empty when it was not provided
func (r EnterRoomRequest) Code() string {
	switch v := r.SMSCode.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return unmatchableCode
	}
}

// SMSCode sends a validity code to the submitted phone number
func (h *CallHandlers) SMSCode(c *gin.Context) {
	// a throttled client is told so whatever it sent
	session := middleware.GetSession(c)
	if err := h.verificationSvc.CheckResend(session, h.now()); err != nil {
		h.fail(c, err)
		return
	}

	var req SMSCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.ErrInvalidRequest)
		return
	}

	issued, err := h.verificationSvc.RequestCode(c.Request.Context(), session, req.PhoneNumber, h.now())
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.save(c, session) {
		return
	}

	c.JSON(http.StatusOK, issued)
}

// EnterRoom checks the validity code and hands out the TRTC room credentials
func (h *CallHandlers) EnterRoom(c *gin.Context) {
	var req EnterRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.ErrInvalidRequest)
		return
	}

	session := middleware.GetSession(c)
	params, err := h.verificationSvc.CheckCode(c.Request.Context(), session, req.Code(), h.now())
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.save(c, session) {
		return
	}

	c.JSON(http.StatusOK, params)
}

// MakeCall asks SIPX to dial the verified phone number into the room
func (h *CallHandlers) MakeCall(c *gin.Context) {
	session := middleware.GetSession(c)
	if _, err := h.callSvc.MakeCall(c.Request.Context(), session, h.now()); err != nil {
		h.fail(c, err)
		return
	}
	if !h.save(c, session) {
		return
	}

	c.Status(http.StatusOK)
}

// ExitRoom dismisses the room after the web participant left it
func (h *CallHandlers) ExitRoom(c *gin.Context) {
	if err := h.callSvc.ExitRoom(c.Request.Context(), middleware.GetSession(c)); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// CallStateNotify receives SIPX call state callbacks
func (h *CallHandlers) CallStateNotify(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Query("room_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room_id"})
		return
	}
	phoneNumber := c.Query("phone_number")
	if phoneNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing phone_number"})
		return
	}

	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid call state payload"})
		return
	}
	stateText, ok := data["state_text"].(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing state_text"})
		return
	}

	event := &domain.CallStateEvent{
		RoomID:      uint32(roomID),
		PhoneNumber: phoneNumber,
		StateText:   stateText,
		Raw:         data,
	}
	if err := h.callSvc.HandleCallState(c.Request.Context(), event); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *CallHandlers) save(c *gin.Context, session *domain.VerificationSession) bool {
	if err := h.sessions.Save(c, session); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return false
	}
	return true
}

var clientErrors = []struct {
	err     error
	status  int
	message string
}{
	{domain.ErrInvalidRequest, http.StatusBadRequest, "Invalid request parameters"},
	{domain.ErrInvalidPhoneNumber, http.StatusBadRequest, "Invalid phone number"},
	{domain.ErrNotMobileNumber, http.StatusBadRequest, "Not a mobile phone number"},
	{domain.ErrMissingCode, http.StatusBadRequest, "Validity code not provided"},
	{domain.ErrSessionMissing, http.StatusBadRequest, "Session data missing or malformed. Cookies must be enabled."},
	{domain.ErrResendTooSoon, http.StatusForbidden, "Validity code requested too soon, please wait"},
	{domain.ErrCodeExpired, http.StatusForbidden, "Validity code has expired"},
	{domain.ErrCodeMismatch, http.StatusForbidden, "Wrong validity code"},
}

// fail writes the error response. Anything that is neither a client error
// nor a provider answer aborts with a bare 500 and is logged by the
// request logger.
func (h *CallHandlers) fail(c *gin.Context, err error) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			c.JSON(ce.status, gin.H{"error": ce.message})
			return
		}
	}

	var rejection *domain.GatewayRejection
	if errors.As(err, &rejection) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": rejection.Message})
		return
	}
	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": providerErr.Error()})
		return
	}

	_ = c.AbortWithError(http.StatusInternalServerError, err)
}
