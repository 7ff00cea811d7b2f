package domain

import "time"

// SessionState is the verification state derived from a session at a point in time
type SessionState int

const (
	// StateEmpty means no validity code is outstanding
	StateEmpty SessionState = iota
	// StatePendingVerification means a code was issued and has not expired
	StatePendingVerification
	// StateVerified means the code matched and a room was allocated
	StateVerified
)

func (s SessionState) String() string {
	switch s {
	case StatePendingVerification:
		return "pending_verification"
	case StateVerified:
		return "verified"
	default:
		return "empty"
	}
}

// TRTCParams are the credentials a participant needs to join a TRTC room
type TRTCParams struct {
	SDKAppID uint64 `json:"sdkAppId"`
	UserID   string `json:"userId"`
	UserSig  string `json:"userSig"`
	RoomID   uint32 `json:"roomId"`
}

// VerificationSession is the client-held record of one click-to-call flow.
// ValidityCode and IssuedAt are always set or cleared together.
type VerificationSession struct {
	PhoneNumber  string
	ValidityCode string
	IssuedAt     *time.Time
	TRTC         *TRTCParams
	// PreviousRoomID is the room dropped by the last Arm. It is only used to
	// tear that room down when the client exits.
	PreviousRoomID uint32
}

// Arm records a freshly issued code. The current room can no longer be used
// for a call and is kept only as PreviousRoomID.
func (s *VerificationSession) Arm(phoneNumber, code string, now time.Time) {
	issued := now
	s.PhoneNumber = phoneNumber
	s.ValidityCode = code
	s.IssuedAt = &issued
	if s.TRTC != nil {
		s.PreviousRoomID = s.TRTC.RoomID
	}
	s.TRTC = nil
}

// ClearVerification removes the code and its issue time, keeping phone and room
func (s *VerificationSession) ClearVerification() {
	s.ValidityCode = ""
	s.IssuedAt = nil
}

// HasCode reports whether a code is outstanding
func (s *VerificationSession) HasCode() bool {
	return s.IssuedAt != nil && s.ValidityCode != ""
}

// RoomID returns the allocated room, if any
func (s *VerificationSession) RoomID() (uint32, bool) {
	if s.TRTC == nil {
		return 0, false
	}
	return s.TRTC.RoomID, true
}

// ExitRoomIDs returns every room the client may still be in: the current
// room first, then the previous one
func (s *VerificationSession) ExitRoomIDs() []uint32 {
	var ids []uint32
	if roomID, ok := s.RoomID(); ok {
		ids = append(ids, roomID)
	}
	if s.PreviousRoomID != 0 && (len(ids) == 0 || ids[0] != s.PreviousRoomID) {
		ids = append(ids, s.PreviousRoomID)
	}
	return ids
}

// Age returns the time elapsed since the code was issued
func (s *VerificationSession) Age(now time.Time) time.Duration {
	if s.IssuedAt == nil {
		return 0
	}
	return now.Sub(*s.IssuedAt)
}

// Expired reports whether the outstanding code is older than liveTimeout
func (s *VerificationSession) Expired(now time.Time, liveTimeout time.Duration) bool {
	return s.IssuedAt != nil && s.Age(now) > liveTimeout
}

// State evaluates the session lazily against the wall clock
func (s *VerificationSession) State(now time.Time, liveTimeout time.Duration) SessionState {
	if !s.HasCode() || s.Expired(now, liveTimeout) {
		return StateEmpty
	}
	if s.TRTC != nil {
		return StateVerified
	}
	return StatePendingVerification
}

// IsEmpty reports whether the session carries nothing worth storing
func (s *VerificationSession) IsEmpty() bool {
	return s.PhoneNumber == "" && !s.HasCode() && s.TRTC == nil && s.PreviousRoomID == 0
}

// SIPXAuthParams authenticate one request to the SIPX open API
type SIPXAuthParams struct {
	APIKey    string
	ExpireAt  int64
	Signature string
}

// CallStartup is the SIPX request that bridges a phone into a TRTC room
type CallStartup struct {
	TRTCParams         TRTCParams `json:"trtcParams"`
	PhoneNumber        string     `json:"phonenumber"`
	CallStateNotifyURL string     `json:"callStateNotifyUrl,omitempty"`
}

// CallStartupResult is what SIPX returns for an accepted call
type CallStartupResult struct {
	ID string `json:"id"`
}

// CallStateEvent is a call-state notification pushed by SIPX
type CallStateEvent struct {
	RoomID      uint32
	PhoneNumber string
	StateText   string
	Raw         map[string]interface{}
}

// CallStateDisconnected is the state text SIPX sends when the phone leg hangs up
const CallStateDisconnected = "DISCONNCTD"

// Disconnected reports whether the phone leg is gone
func (e *CallStateEvent) Disconnected() bool {
	return e.StateText == CallStateDisconnected
}

// CodeIssued is returned to the client after a code was sent
type CodeIssued struct {
	SendTimeout int64 `json:"sendTimeout"`
	LiveTimeout int64 `json:"liveTimeout"`
}
