package e2e

import (
	"bytes"
	"encoding/json"
	"maps"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/app"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/config"
	httpx "github.com/tanbro/sipxrtc-demo-trtc-web/internal/http"
	testconfig "github.com/tanbro/sipxrtc-demo-trtc-web/internal/tests/config"
	"go.uber.org/zap/zaptest"
)

// TestServer wraps the whole application behind a real HTTP listener,
// talking to fake Tencent Cloud and SIPX endpoints and an in-memory Redis
type TestServer struct {
	Server    *httptest.Server
	Container *app.Container
	Config    *config.Config
	Redis     *miniredis.Miniredis
	Tencent   *FakeTencentCloud
	SIPX      *FakeSIPX
	BaseURL   string
	Client    *http.Client
}

// NewTestServer creates a new test server instance for E2E testing.
// overrides are environment variables applied on top of the test configuration.
func NewTestServer(t *testing.T, overrides map[string]string) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

	tencent := NewFakeTencentCloud(t)
	sipx := NewFakeSIPX(t)
	mr := miniredis.RunT(t)

	// The listener exists before the config so the public URL can point at it
	server := httptest.NewUnstartedServer(nil)
	baseURL := "http://" + server.Listener.Addr().String()

	env := map[string]string{
		"TENCENTCLOUD_SMS_ENDPOINT":  tencent.URL(),
		"TENCENTCLOUD_TRTC_ENDPOINT": tencent.URL(),
		"SIPX_OPENAPI_URL":           sipx.URL(),
		"REDIS_ADDR":                 mr.Addr(),
		"APP_SERVER_PUBLIC_URL":      baseURL,
	}
	maps.Copy(env, overrides)
	cfg := testconfig.LoadTestConfig(t, env)

	logger := zaptest.NewLogger(t)
	container, err := app.NewContainer(cfg, logger)
	require.NoError(t, err, "Failed to create container")

	server.Config.Handler = httpx.BuildRouter(httpx.RouterConfig{
		ApplicationRoot:  cfg.ApplicationRoot,
		IndexTemplate:    container.IndexTemplate(),
		CORSEnabled:      cfg.CORSEnabled,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	}, logger, container.Sessions, container.CallHandlers, container.PageHandlers)
	server.Start()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	ts := &TestServer{
		Server:    server,
		Container: container,
		Config:    cfg,
		Redis:     mr,
		Tencent:   tencent,
		SIPX:      sipx,
		BaseURL:   baseURL,
		Client:    &http.Client{Timeout: 10 * time.Second, Jar: jar},
	}

	t.Cleanup(func() {
		server.Close()
		_ = container.Close()
	})

	return ts
}

// URL returns the absolute URL of a route under the application root
func (s *TestServer) URL(path string) string {
	return s.BaseURL + strings.TrimRight(s.Config.ApplicationRoot, "/") + path
}

// PostJSON posts a JSON body with the server's cookie jar
func (s *TestServer) PostJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	resp, err := s.Client.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// Post posts a JSON body to an application route
func (s *TestServer) Post(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	return s.PostJSON(t, s.URL(path), body)
}

// DecodeJSON decodes a response body into v
func DecodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// ErrorMessage returns the "error" field of a JSON error response
func ErrorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	DecodeJSON(t, resp, &body)
	return body["error"]
}
