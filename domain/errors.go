package domain

import (
	"errors"
	"fmt"
)

// Request errors
var (
	ErrInvalidRequest     = errors.New("invalid request parameters")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrNotMobileNumber    = errors.New("not a mobile phone number")
	ErrMissingCode        = errors.New("validity code not provided")
)

// Session errors
var (
	ErrSessionMissing = errors.New("session data missing or malformed")
	ErrResendTooSoon  = errors.New("validity code requested too soon")
	ErrCodeExpired    = errors.New("validity code has expired")
	ErrCodeMismatch   = errors.New("validity code does not match")
)

// Remote errors
var (
	ErrGatewayUnavailable = errors.New("sipx gateway unavailable")
	ErrRoomExhausted      = errors.New("no free trtc room id")
)

// Ignorable provider error codes
const (
	CodeRoomNotExist = "FailedOperation.RoomNotExist"
)

// ProviderError is a failure reported by a cloud provider API
type ProviderError struct {
	Provider  string
	Operation string
	Code      string
	Message   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s failed (%s): %s", e.Operation, e.Code, e.Message)
}

// GatewayRejection is a 4xx answer from the SIPX open API
type GatewayRejection struct {
	StatusCode int
	Message    string
}

func (e *GatewayRejection) Error() string {
	return fmt.Sprintf("sipx rejected request (%d): %s", e.StatusCode, e.Message)
}
