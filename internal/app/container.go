package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/config"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/http/handlers"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/http/middleware"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/audit"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/auth"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/database"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/notifications"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/repositories"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/sipx"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/tencentcloud"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/infrastructure/trtc"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	RedisClient *database.RedisClient

	// Repositories
	RoomRepo domain.RoomRepository

	// Adapters
	SMSSender    domain.SMSSender
	RoomSvc      domain.RoomService
	UserSigner   domain.UserSigner
	CallGateway  domain.CallGateway
	AuditLogger  domain.AuditLogger
	SessionCodec domain.SessionCodec

	// Services
	RoomAllocator   domain.RoomAllocator
	VerificationSvc domain.VerificationService
	CallSvc         domain.CallService

	// HTTP
	Sessions     *middleware.Sessions
	CallHandlers *handlers.CallHandlers
	PageHandlers *handlers.PageHandlers
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	container := &Container{Config: cfg, Logger: logger}

	// Initialize infrastructure
	if err := container.initRedis(); err != nil {
		return nil, err
	}

	// Initialize adapters
	if err := container.initAdapters(); err != nil {
		return nil, err
	}

	// Initialize services
	container.initServices()

	// Initialize HTTP layer
	if err := container.initHTTP(); err != nil {
		return nil, err
	}

	return container, nil
}

func (c *Container) initRedis() error {
	if c.Config.RedisAddr == "" {
		c.Logger.Info("redis not configured, room ids are not leased")
		return nil
	}
	c.RedisClient = database.NewRedis(database.RedisConfig{
		Addr:     c.Config.RedisAddr,
		Password: c.Config.RedisPassword,
		DB:       c.Config.RedisDB,
	})
	if err := c.RedisClient.Ping(context.Background()); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	c.RoomRepo = repositories.NewRoomRepository(c.RedisClient)
	return nil
}

func (c *Container) initAdapters() error {
	cfg := c.Config
	account := tencentcloud.Account{
		SecretID:  cfg.TencentSecretID,
		SecretKey: cfg.TencentSecretKey,
		Region:    cfg.TencentRegion,
	}

	switch cfg.SMSProvider {
	case "tencent":
		sender, err := notifications.NewTencentSMSSender(account, notifications.TencentSMSConfig{
			SDKAppID:   cfg.SMSSDKAppID,
			SignName:   cfg.SMSSignName,
			TemplateID: cfg.SMSTemplateID,
			Endpoint:   cfg.SMSEndpoint,
		}, c.Logger)
		if err != nil {
			return fmt.Errorf("tencent sms: %w", err)
		}
		c.SMSSender = sender
	case "twilio":
		c.SMSSender = notifications.NewTwilioSMSSender(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, c.Logger)
	case "log":
		c.SMSSender = notifications.NewLogSMSSender(c.Logger)
	default:
		return fmt.Errorf("unknown sms provider %q", cfg.SMSProvider)
	}

	roomSvc, err := trtc.NewRoomService(account, cfg.TRTCEndpoint, cfg.TRTCSDKAppID, c.Logger)
	if err != nil {
		return fmt.Errorf("trtc: %w", err)
	}
	c.RoomSvc = roomSvc
	c.UserSigner = trtc.NewUserSigner(cfg.TRTCSDKAppID, cfg.TRTCSecretKey)

	c.CallGateway = sipx.NewClient(sipx.Config{
		BaseURL:      cfg.SIPXURL,
		APIKey:       cfg.SIPXAPIKey,
		APISecret:    cfg.SIPXAPISecret,
		SignatureTTL: cfg.SIPXSignatureTTL,
		Timeout:      cfg.SIPXTimeout,
	}, c.Logger)

	c.AuditLogger = audit.NewZapLogger(c.Logger)

	codec, err := auth.NewJWTSessionCodec(cfg.SessionSecret, cfg.SessionLifetime, nil)
	if err != nil {
		return err
	}
	c.SessionCodec = codec
	return nil
}

func (c *Container) initServices() {
	cfg := c.Config

	allocatorConfig := services.RoomAllocatorConfig{
		LeaseTTL:     cfg.LiveTimeout + cfg.UserSigTTL,
		CallLeaseTTL: cfg.CallLeaseTTL,
	}
	if cfg.IsDevelopment() {
		allocatorConfig.FixedRoomID = cfg.DevTRTCRoomID
	}
	c.RoomAllocator = services.NewRoomAllocator(c.RoomRepo, allocatorConfig, c.Logger)

	verificationConfig := services.VerificationConfig{
		SendTimeout: cfg.SendTimeout,
		LiveTimeout: cfg.LiveTimeout,
		UserSigTTL:  cfg.UserSigTTL,
	}
	if !cfg.IsProduction() {
		verificationConfig.DevValidityCode = cfg.DevValidityCode
	}
	c.VerificationSvc = services.NewVerificationService(c.SMSSender, c.UserSigner, c.RoomAllocator, c.AuditLogger, verificationConfig, c.Logger)

	c.CallSvc = services.NewCallService(c.CallGateway, c.RoomSvc, c.RoomAllocator, c.UserSigner, c.AuditLogger, services.CallConfig{
		LiveTimeout: cfg.LiveTimeout,
		UserSigTTL:  cfg.UserSigTTL,
		PublicURL:   cfg.PublicURL,
	}, c.Logger)
}

func (c *Container) initHTTP() error {
	cfg := c.Config

	c.Sessions = middleware.NewSessions(c.SessionCodec, middleware.CookieConfig{
		Name:     cfg.SessionCookieName,
		Path:     cfg.SessionCookiePath,
		Secure:   cfg.SessionCookieSecure,
		Lifetime: cfg.SessionLifetime,
	}, c.Logger)
	c.CallHandlers = handlers.NewCallHandlers(c.VerificationSvc, c.CallSvc, c.Sessions)

	pages, err := handlers.NewPageHandlers(cfg.ApplicationRoot, cfg.StaticFolder, cfg.StaticBaseURL)
	if err != nil {
		return fmt.Errorf("invalid static base url: %w", err)
	}
	c.PageHandlers = pages
	return nil
}

// IndexTemplate returns the path of the demo page template, or "" when no
// template folder is configured
func (c *Container) IndexTemplate() string {
	if c.Config.TemplateFolder == "" {
		return ""
	}
	return filepath.Join(c.Config.TemplateFolder, "index.html")
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		return c.RedisClient.Close()
	}
	return nil
}
