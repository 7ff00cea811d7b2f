package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/twilio/twilio-go"
	twilioClient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// messageAPI is the part of the Twilio REST client used here
type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSMSSender implements domain.SMSSender with Twilio Programmable Messaging
type TwilioSMSSender struct {
	api        messageAPI
	fromNumber string
	logger     *zap.Logger
}

// NewTwilioSMSSender creates a new Twilio SMS sender
func NewTwilioSMSSender(accountSID, authToken, fromNumber string, logger *zap.Logger) *TwilioSMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSSender{
		api:        client.Api,
		fromNumber: fromNumber,
		logger:     logger.Named("sms"),
	}
}

// SendValidationCode implements domain.SMSSender
func (t *TwilioSMSSender) SendValidationCode(ctx context.Context, phoneNumber, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(t.fromNumber)
	params.SetBody(fmt.Sprintf("Your verification code is: %s", code))

	_, err := t.api.CreateMessage(params)
	if err == nil {
		return nil
	}

	t.logger.Warn("send validity code failed", zap.String("phone", phoneNumber), zap.Error(err))
	var restErr *twilioClient.TwilioRestError
	if errors.As(err, &restErr) {
		return &domain.ProviderError{
			Provider:  "twilio",
			Operation: "CreateMessage",
			Code:      strconv.Itoa(restErr.Code),
			Message:   restErr.Message,
		}
	}
	return &domain.ProviderError{
		Provider:  "twilio",
		Operation: "CreateMessage",
		Code:      "ClientError",
		Message:   err.Error(),
	}
}
