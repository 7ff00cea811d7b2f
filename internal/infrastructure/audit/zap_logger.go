package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// ZapLogger implements domain.AuditLogger by writing structured log entries
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates an audit logger on top of the process logger
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger.Named("audit")}
}

// LogEvent implements domain.AuditLogger
func (l *ZapLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	fields := []zap.Field{
		zap.String("event_type", string(event.EventType)),
		zap.Time("timestamp", event.Timestamp),
		zap.Bool("success", event.Success),
	}
	if event.Phone != "" {
		fields = append(fields, zap.String("phone", event.Phone))
	}
	if event.RoomID != 0 {
		fields = append(fields, zap.Uint32("room_id", event.RoomID))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if !event.Success {
		l.logger.Warn("audit", append(fields, zap.String("error", event.ErrorMsg))...)
		return nil
	}
	l.logger.Info("audit", fields...)
	return nil
}

var _ domain.AuditLogger = (*ZapLogger)(nil)
