package notifications

import (
	"context"

	"go.uber.org/zap"
)

// LogSMSSender writes codes to the log instead of sending them
type LogSMSSender struct {
	logger *zap.Logger
}

// NewLogSMSSender creates a sender for local development
func NewLogSMSSender(logger *zap.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger.Named("sms")}
}

// SendValidationCode implements domain.SMSSender
func (l *LogSMSSender) SendValidationCode(ctx context.Context, phoneNumber, code string) error {
	l.logger.Info("[MOCK SMS] validity code", zap.String("phone", phoneNumber), zap.String("code", code))
	return nil
}
