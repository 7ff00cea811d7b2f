package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Application environments
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type AppConfig struct {
	Env              string `yaml:"env"`
	Port             int    `yaml:"port"`
	GinMode          string `yaml:"gin_mode"`
	PublicURL        string `yaml:"public_url"`
	ApplicationRoot  string `yaml:"application_root"`
	TemplateFolder   string `yaml:"template_folder"`
	StaticFolder     string `yaml:"static_folder"`
	StaticBaseURL    string `yaml:"static_base_url"`
	CORSEnabled      bool   `yaml:"cors_enabled"`
	CORSAllowOrigins string `yaml:"cors_allow_origins"`
	DevValidityCode  string `yaml:"development_sms_validity_code"`
	DevTRTCRoomID    uint32 `yaml:"development_trtc_room_id"`
}

type SessionConfig struct {
	SecretKey    string `yaml:"secret_key"`
	CookieName   string `yaml:"cookie_name"`
	CookiePath   string `yaml:"cookie_path"`
	CookieSecure bool   `yaml:"cookie_secure"`
	Lifetime     string `yaml:"lifetime"`
	SendTimeout  string `yaml:"send_timeout"`
	LiveTimeout  string `yaml:"live_timeout"`
}

type TencentCloudConfig struct {
	SecretID  string `yaml:"secret_id"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	TRTC      struct {
		SDKAppID   uint64 `yaml:"sdk_app_id"`
		SecretKey  string `yaml:"secret_key"`
		UserSigTTL string `yaml:"usersig_ttl"`
		Endpoint   string `yaml:"endpoint"`
	} `yaml:"trtc"`
	SMS struct {
		SDKAppID   string `yaml:"sdk_app_id"`
		SignName   string `yaml:"sign_name"`
		TemplateID string `yaml:"template_id"`
		Endpoint   string `yaml:"endpoint"`
	} `yaml:"sms"`
}

type SMSConfig struct {
	Provider string `yaml:"provider"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type SIPXConfig struct {
	OpenAPIURL   string `yaml:"openapi_url"`
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	SignatureTTL string `yaml:"signature_ttl"`
	Timeout      string `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// CallLeaseTTL keeps a room id reserved while a call may still be live
	CallLeaseTTL string `yaml:"call_lease_ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ConfigFile struct {
	App          AppConfig          `yaml:"app"`
	Session      SessionConfig      `yaml:"session"`
	TencentCloud TencentCloudConfig `yaml:"tencentcloud"`
	SMS          SMSConfig          `yaml:"sms"`
	Twilio       TwilioConfig       `yaml:"twilio"`
	SIPX         SIPXConfig         `yaml:"sipx"`
	Redis        RedisConfig        `yaml:"redis"`
	Log          LogConfig          `yaml:"log"`
}

type Config struct {
	Env              string
	Port             string
	GinMode          string
	PublicURL        string
	ApplicationRoot  string
	TemplateFolder   string
	StaticFolder     string
	StaticBaseURL    string
	CORSEnabled      bool
	CORSAllowOrigins []string
	DevValidityCode  string
	DevTRTCRoomID    uint32

	SessionSecret       string
	SessionCookieName   string
	SessionCookiePath   string
	SessionCookieSecure bool
	SessionLifetime     time.Duration
	SendTimeout         time.Duration
	LiveTimeout         time.Duration

	TencentSecretID  string
	TencentSecretKey string
	TencentRegion    string
	TRTCSDKAppID     uint64
	TRTCSecretKey    string
	TRTCEndpoint     string
	UserSigTTL       time.Duration
	SMSSDKAppID      string
	SMSSignName      string
	SMSTemplateID    string
	SMSEndpoint      string

	SMSProvider string
	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	SIPXURL          string
	SIPXAPIKey       string
	SIPXAPISecret    string
	SIPXSignatureTTL time.Duration
	SIPXTimeout      time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CallLeaseTTL  time.Duration

	LogLevel  string
	LogFormat string
}

// IsProduction reports whether validity codes must really be sent
func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// IsDevelopment reports whether development shortcuts such as a fixed room are allowed
func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Load reads .env, the YAML config file and environment overrides, in that order
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	configFile, err := loadConfigFile(env("CONFIG_FILE", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return FromFile(configFile)
}

// FromFile builds a Config from a decoded file, applying defaults and environment overrides
func FromFile(f *ConfigFile) (*Config, error) {
	applyDefaults(f)

	sendTimeout, err := time.ParseDuration(env("APP_SMS_SEND_TIMEOUT", f.Session.SendTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid sms send timeout: %w", err)
	}
	liveTimeout, err := time.ParseDuration(env("APP_SMS_LIVE_TIMEOUT", f.Session.LiveTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid sms live timeout: %w", err)
	}
	lifetime, err := time.ParseDuration(env("SESSION_LIFETIME", f.Session.Lifetime))
	if err != nil {
		return nil, fmt.Errorf("invalid session lifetime: %w", err)
	}
	userSigTTL, err := time.ParseDuration(f.TencentCloud.TRTC.UserSigTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid trtc usersig ttl: %w", err)
	}
	signatureTTL, err := time.ParseDuration(f.SIPX.SignatureTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid sipx signature ttl: %w", err)
	}
	sipxTimeout, err := time.ParseDuration(f.SIPX.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid sipx timeout: %w", err)
	}

	callLeaseTTL, err := time.ParseDuration(env("REDIS_CALL_LEASE_TTL", f.Redis.CallLeaseTTL))
	if err != nil {
		return nil, fmt.Errorf("invalid redis call lease ttl: %w", err)
	}

	trtcAppID := f.TencentCloud.TRTC.SDKAppID
	if v := os.Getenv("TENCENTCLOUD_TRTC_SDK_APP_ID"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TENCENTCLOUD_TRTC_SDK_APP_ID: %w", err)
		}
		trtcAppID = id
	}
	devRoomID := f.App.DevTRTCRoomID
	if v := os.Getenv("APP_DEVELOPMENT_TRTC_ROOM_ID"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid APP_DEVELOPMENT_TRTC_ROOM_ID: %w", err)
		}
		devRoomID = uint32(id)
	}

	return &Config{
		Env:              env("APP_ENV", f.App.Env),
		Port:             env("PORT", fmt.Sprintf("%d", f.App.Port)),
		GinMode:          env("GIN_MODE", f.App.GinMode),
		PublicURL:        strings.TrimRight(env("APP_SERVER_PUBLIC_URL", f.App.PublicURL), "/"),
		ApplicationRoot:  env("APPLICATION_ROOT", f.App.ApplicationRoot),
		TemplateFolder:   env("APP_TEMPLATE_FOLDER", f.App.TemplateFolder),
		StaticFolder:     env("APP_STATIC_FOLDER", f.App.StaticFolder),
		StaticBaseURL:    env("APP_STATIC_BASE_URL", f.App.StaticBaseURL),
		CORSEnabled:      envBool("CORS_ENABLED", f.App.CORSEnabled),
		CORSAllowOrigins: parseOrigins(env("CORS_ALLOWED_ORIGINS", f.App.CORSAllowOrigins)),
		DevValidityCode:  env("APP_DEVELOPMENT_SMS_VALIDITY_CODE", f.App.DevValidityCode),
		DevTRTCRoomID:    devRoomID,

		SessionSecret:       env("SECRET_KEY", f.Session.SecretKey),
		SessionCookieName:   env("SESSION_COOKIE_NAME", f.Session.CookieName),
		SessionCookiePath:   env("SESSION_COOKIE_PATH", f.Session.CookiePath),
		SessionCookieSecure: envBool("SESSION_COOKIE_SECURE", f.Session.CookieSecure),
		SessionLifetime:     lifetime,
		SendTimeout:         sendTimeout,
		LiveTimeout:         liveTimeout,

		TencentSecretID:  env("TENCENTCLOUD_SECRET_ID", f.TencentCloud.SecretID),
		TencentSecretKey: env("TENCENTCLOUD_SECRET_KEY", f.TencentCloud.SecretKey),
		TencentRegion:    env("TENCENTCLOUD_REGION", f.TencentCloud.Region),
		TRTCSDKAppID:     trtcAppID,
		TRTCSecretKey:    env("TENCENTCLOUD_TRTC_SECRET_KEY", f.TencentCloud.TRTC.SecretKey),
		TRTCEndpoint:     env("TENCENTCLOUD_TRTC_ENDPOINT", f.TencentCloud.TRTC.Endpoint),
		UserSigTTL:       userSigTTL,
		SMSSDKAppID:      env("TENCENTCLOUD_SMS_SDK_APP_ID", f.TencentCloud.SMS.SDKAppID),
		SMSSignName:      env("TENCENTCLOUD_SMS_SIGN_NAME", f.TencentCloud.SMS.SignName),
		SMSTemplateID:    env("TENCENTCLOUD_SMS_TEMPLATE_ID", f.TencentCloud.SMS.TemplateID),
		SMSEndpoint:      env("TENCENTCLOUD_SMS_ENDPOINT", f.TencentCloud.SMS.Endpoint),

		SMSProvider: env("SMS_PROVIDER", f.SMS.Provider),
		TwilioSID:   env("TWILIO_ACCOUNT_SID", f.Twilio.AccountSID),
		TwilioToken: env("TWILIO_AUTH_TOKEN", f.Twilio.AuthToken),
		TwilioFrom:  env("TWILIO_FROM_NUMBER", f.Twilio.FromNumber),

		SIPXURL:          strings.TrimRight(env("SIPX_OPENAPI_URL", f.SIPX.OpenAPIURL), "/"),
		SIPXAPIKey:       env("SIPX_OPENAPI_KEY", f.SIPX.APIKey),
		SIPXAPISecret:    env("SIPX_OPENAPI_SECRET", f.SIPX.APISecret),
		SIPXSignatureTTL: signatureTTL,
		SIPXTimeout:      sipxTimeout,

		RedisAddr:     env("REDIS_ADDR", f.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", f.Redis.Password),
		RedisDB:       envInt("REDIS_DB", f.Redis.DB),
		CallLeaseTTL:  callLeaseTTL,

		LogLevel:  env("LOG_LEVEL", f.Log.Level),
		LogFormat: env("LOG_FORMAT", f.Log.Format),
	}, nil
}

func applyDefaults(f *ConfigFile) {
	if f.App.Env == "" {
		f.App.Env = EnvProduction
	}
	if f.App.Port == 0 {
		f.App.Port = 8080
	}
	if f.App.GinMode == "" {
		f.App.GinMode = "release"
	}
	if f.Session.CookieName == "" {
		f.Session.CookieName = "session"
	}
	if f.Session.CookiePath == "" {
		f.Session.CookiePath = "/"
	}
	if f.Session.Lifetime == "" {
		f.Session.Lifetime = "24h"
	}
	if f.Session.SendTimeout == "" {
		f.Session.SendTimeout = "45s"
	}
	if f.Session.LiveTimeout == "" {
		f.Session.LiveTimeout = "600s"
	}
	if f.TencentCloud.Region == "" {
		f.TencentCloud.Region = "ap-guangzhou"
	}
	if f.TencentCloud.TRTC.UserSigTTL == "" {
		f.TencentCloud.TRTC.UserSigTTL = "600s"
	}
	if f.SMS.Provider == "" {
		f.SMS.Provider = "tencent"
	}
	if f.SIPX.SignatureTTL == "" {
		f.SIPX.SignatureTTL = "600s"
	}
	if f.SIPX.Timeout == "" {
		f.SIPX.Timeout = "30s"
	}
	if f.Redis.CallLeaseTTL == "" {
		f.Redis.CallLeaseTTL = "4h"
	}
	if f.Log.Level == "" {
		f.Log.Level = "info"
	}
}

// Validate reports every missing setting the service cannot run without
func (c *Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("session secret key (SECRET_KEY) is required"))
	}
	if c.TRTCSDKAppID == 0 || c.TRTCSecretKey == "" {
		errs = append(errs, errors.New("trtc sdk app id and secret key are required"))
	}
	if c.TencentSecretID == "" || c.TencentSecretKey == "" {
		errs = append(errs, errors.New("tencentcloud secret id and key are required"))
	}
	if c.SIPXURL == "" || c.SIPXAPIKey == "" || c.SIPXAPISecret == "" {
		errs = append(errs, errors.New("sipx openapi url, key and secret are required"))
	}
	switch c.SMSProvider {
	case "tencent":
		if c.SMSSDKAppID == "" || c.SMSSignName == "" || c.SMSTemplateID == "" {
			errs = append(errs, errors.New("tencentcloud sms app id, sign name and template id are required"))
		}
	case "twilio":
		if c.TwilioSID == "" || c.TwilioToken == "" || c.TwilioFrom == "" {
			errs = append(errs, errors.New("twilio account sid, auth token and from number are required"))
		}
	case "log":
		if c.IsProduction() {
			errs = append(errs, errors.New("sms provider \"log\" is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sms provider %q", c.SMSProvider))
	}
	if c.LiveTimeout <= 0 || c.SendTimeout <= 0 {
		errs = append(errs, errors.New("sms send and live timeouts must be positive"))
	}
	return errors.Join(errs...)
}

func loadConfigFile(path string) (*ConfigFile, error) {
	var config ConfigFile
	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func parseOrigins(origins string) []string {
	var result []string
	for _, p := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
