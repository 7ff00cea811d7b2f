package notifications

import (
	"context"
	"errors"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	tcerr "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	smsapi "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/sms/v20210111"
	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/tencentcloud"
)

const sendSmsOperation = "SendSms"

// sendSmsAPI is the part of the SMS SDK client used here
type sendSmsAPI interface {
	SendSmsWithContext(ctx context.Context, request *smsapi.SendSmsRequest) (*smsapi.SendSmsResponse, error)
}

// TencentSMSConfig identifies the SMS application, signature and template
type TencentSMSConfig struct {
	SDKAppID   string
	SignName   string
	TemplateID string
	// Endpoint overrides the public SMS API host when set
	Endpoint string
}

// TencentSMSSender implements domain.SMSSender with Tencent Cloud SMS.
// The template must take exactly one parameter: the code.
type TencentSMSSender struct {
	api    sendSmsAPI
	config TencentSMSConfig
	logger *zap.Logger
}

// NewTencentSMSSender creates a Tencent Cloud SMS sender
func NewTencentSMSSender(account tencentcloud.Account, config TencentSMSConfig, logger *zap.Logger) (*TencentSMSSender, error) {
	client, err := smsapi.NewClient(account.Credential(), account.Region, tencentcloud.ClientProfile(config.Endpoint))
	if err != nil {
		return nil, err
	}
	return newTencentSMSSender(client, config, logger), nil
}

func newTencentSMSSender(api sendSmsAPI, config TencentSMSConfig, logger *zap.Logger) *TencentSMSSender {
	return &TencentSMSSender{
		api:    api,
		config: config,
		logger: logger.Named("sms"),
	}
}

// SendValidationCode implements domain.SMSSender
func (s *TencentSMSSender) SendValidationCode(ctx context.Context, phoneNumber, code string) error {
	req := smsapi.NewSendSmsRequest()
	req.SmsSdkAppId = common.StringPtr(s.config.SDKAppID)
	req.SignName = common.StringPtr(s.config.SignName)
	req.TemplateId = common.StringPtr(s.config.TemplateID)
	req.TemplateParamSet = common.StringPtrs([]string{code})
	// E.164: +[country code][subscriber number]
	req.PhoneNumberSet = common.StringPtrs([]string{phoneNumber})

	s.logger.Debug("sending validity code", zap.String("phone", phoneNumber))
	res, err := s.api.SendSmsWithContext(ctx, req)
	if err != nil {
		s.logger.Warn("send validity code failed", zap.String("phone", phoneNumber), zap.Error(err))
		var sdkErr *tcerr.TencentCloudSDKError
		if errors.As(err, &sdkErr) {
			return &domain.ProviderError{
				Provider:  "tencent-sms",
				Operation: sendSmsOperation,
				Code:      sdkErr.GetCode(),
				Message:   sdkErr.GetMessage(),
			}
		}
		return &domain.ProviderError{
			Provider:  "tencent-sms",
			Operation: sendSmsOperation,
			Code:      "ClientError",
			Message:   err.Error(),
		}
	}

	if res == nil || res.Response == nil || len(res.Response.SendStatusSet) == 0 {
		return &domain.ProviderError{
			Provider:  "tencent-sms",
			Operation: sendSmsOperation,
			Code:      "EmptyResponse",
			Message:   "no send status returned",
		}
	}

	status := res.Response.SendStatusSet[0]
	statusCode := deref(status.Code)
	if statusCode != "Ok" {
		s.logger.Warn("send validity code rejected",
			zap.String("phone", phoneNumber),
			zap.String("code", statusCode),
			zap.String("message", deref(status.Message)))
		return &domain.ProviderError{
			Provider:  "tencent-sms",
			Operation: sendSmsOperation,
			Code:      statusCode,
			Message:   deref(status.Message),
		}
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
