package domain

import (
	"context"
	"time"
)

// SMSSender delivers validity codes
type SMSSender interface {
	SendValidationCode(ctx context.Context, phoneNumber, code string) error
}

// RoomService tears down TRTC rooms. Errors whose code is listed in
// ignoreCodes are treated as success.
type RoomService interface {
	DismissRoom(ctx context.Context, roomID uint32, ignoreCodes ...string) error
}

// UserSigner issues TRTC user signatures
type UserSigner interface {
	SDKAppID() uint64
	GenUserSig(userID string, expire time.Duration) (string, error)
}

// CallGateway places outbound calls through SIPX
type CallGateway interface {
	Startup(ctx context.Context, req *CallStartup) (*CallStartupResult, error)
}

// RoomAllocator picks room ids for new calls
type RoomAllocator interface {
	Allocate(ctx context.Context) (uint32, error)
	Release(ctx context.Context, roomID uint32) error
	// Renew extends the lease of a room that now carries a call
	Renew(ctx context.Context, roomID uint32) error
}

// RoomRepository stores short-lived room id leases
type RoomRepository interface {
	Reserve(ctx context.Context, roomID uint32, ttl time.Duration) (bool, error)
	Renew(ctx context.Context, roomID uint32, ttl time.Duration) error
	Release(ctx context.Context, roomID uint32) error
}

// SessionCodec turns a session into a tamper-evident cookie value and back
type SessionCodec interface {
	Encode(session *VerificationSession) (string, error)
	Decode(token string) (*VerificationSession, error)
}

// VerificationService drives the code request and code check steps
type VerificationService interface {
	CheckResend(session *VerificationSession, now time.Time) error
	RequestCode(ctx context.Context, session *VerificationSession, rawPhone string, now time.Time) (*CodeIssued, error)
	CheckCode(ctx context.Context, session *VerificationSession, code string, now time.Time) (*TRTCParams, error)
}

// CallService drives call placement and room teardown
type CallService interface {
	MakeCall(ctx context.Context, session *VerificationSession, now time.Time) (*CallStartupResult, error)
	ExitRoom(ctx context.Context, session *VerificationSession) error
	HandleCallState(ctx context.Context, event *CallStateEvent) error
}
