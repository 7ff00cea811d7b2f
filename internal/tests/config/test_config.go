package config

import (
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/config"
)

// Fixed values the end-to-end fakes expect
const (
	TestSDKAppID      = "1400000000"
	TestSMSTemplateID = "888888"
	TestSIPXAPIKey    = "88888888"
)

// LoadTestConfig loads configuration specifically for E2E testing.
// Baseline values are applied first, then .env.test, then overrides.
func LoadTestConfig(t *testing.T, overrides map[string]string) *config.Config {
	t.Helper()

	// Keep a developer's config/config.yml out of the tests
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yml"))

	for k, v := range testEnvironment() {
		t.Setenv(k, v)
	}

	if env, err := godotenv.Read(".env.test"); err == nil {
		for k, v := range env {
			t.Setenv(k, v)
		}
	}

	for k, v := range overrides {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load test configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Invalid test configuration: %v", err)
	}

	t.Logf("Test config loaded - env: %s, sms: %s, sipx: %s, redis: %q",
		cfg.Env, cfg.SMSProvider, cfg.SIPXURL, cfg.RedisAddr)
	return cfg
}

// GetTestSessionSecret returns a deterministic cookie secret for testing
func GetTestSessionSecret() string {
	return "test-session-secret-for-e2e"
}

func testEnvironment() map[string]string {
	return map[string]string{
		"APP_ENV":                           "production",
		"GIN_MODE":                          "test",
		"APP_DEVELOPMENT_SMS_VALIDITY_CODE": "",
		"SECRET_KEY":                        GetTestSessionSecret(),
		"SESSION_COOKIE_SECURE":             "false",
		"TENCENTCLOUD_SECRET_ID":            "AKIDtest",
		"TENCENTCLOUD_SECRET_KEY":           "test-secret-key",
		"TENCENTCLOUD_REGION":               "ap-guangzhou",
		"TENCENTCLOUD_TRTC_SDK_APP_ID":      TestSDKAppID,
		"TENCENTCLOUD_TRTC_SECRET_KEY":      "test-trtc-key",
		"TENCENTCLOUD_SMS_SDK_APP_ID":       "1400000001",
		"TENCENTCLOUD_SMS_SIGN_NAME":        "demo",
		"TENCENTCLOUD_SMS_TEMPLATE_ID":      TestSMSTemplateID,
		"SMS_PROVIDER":                      "tencent",
		"SIPX_OPENAPI_KEY":                  TestSIPXAPIKey,
		"SIPX_OPENAPI_SECRET":               "test-sipx-secret",
	}
}
