package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Verification events
	CodeRequestedEvent AuditEventType = "CODE_REQUESTED"
	CodeVerifiedEvent  AuditEventType = "CODE_VERIFIED"
	CodeRejectedEvent  AuditEventType = "CODE_REJECTED"

	// Call events
	CallStartedEvent       AuditEventType = "CALL_STARTED"
	CallFailedEvent        AuditEventType = "CALL_FAILED"
	RoomDismissedEvent     AuditEventType = "ROOM_DISMISSED"
	CallStateNotifiedEvent AuditEventType = "CALL_STATE_NOTIFIED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType AuditEventType         `json:"event_type"`
	Phone     string                 `json:"phone,omitempty"`
	RoomID    uint32                 `json:"room_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// AuditLogger records audit events
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent) error
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithPhone sets the phone field
func (e *AuditEvent) WithPhone(phone string) *AuditEvent {
	e.Phone = phone
	return e
}

// WithRoom sets the room field
func (e *AuditEvent) WithRoom(roomID uint32) *AuditEvent {
	e.RoomID = roomID
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}
