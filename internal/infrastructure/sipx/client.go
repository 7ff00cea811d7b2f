package sipx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/auth"
)

const startupPath = "/trtc/startup"

// Config holds the SIPX open API endpoint and credentials
type Config struct {
	BaseURL      string
	APIKey       string
	APISecret    string
	SignatureTTL time.Duration
	Timeout      time.Duration
}

// Client implements domain.CallGateway against the SIPX open API
type Client struct {
	config Config
	client *http.Client
	now    func() time.Time
	logger *zap.Logger
}

// NewClient creates a SIPX client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		now:    time.Now,
		logger: logger.Named("sipx"),
	}
}

type errorBody struct {
	Message string `json:"message"`
}

// Startup asks SIPX to dial the phone participant into the TRTC room.
// A 4xx answer becomes *domain.GatewayRejection; anything else that is not
// a 2xx wraps domain.ErrGatewayUnavailable.
func (c *Client) Startup(ctx context.Context, req *domain.CallStartup) (*domain.CallStartupResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal startup request: %w", err)
	}

	params := auth.NewSIPXAuthParams(c.config.APIKey, c.config.APISecret, c.now(), c.config.SignatureTTL)
	query := url.Values{}
	query.Set("api_key", params.APIKey)
	query.Set("expire_at", strconv.FormatInt(params.ExpireAt, 10))
	query.Set("signature", params.Signature)
	target := c.config.BaseURL + startupPath + "?" + query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("startup request",
		zap.Uint32("room_id", req.TRTCParams.RoomID),
		zap.String("phone", req.PhoneNumber))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", domain.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err != nil || eb.Message == "" {
			eb.Message = string(body)
		}
		c.logger.Warn("startup rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", eb.Message))
		return nil, &domain.GatewayRejection{StatusCode: resp.StatusCode, Message: eb.Message}
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var result domain.CallStartupResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", domain.ErrGatewayUnavailable, err)
	}
	return &result, nil
}
