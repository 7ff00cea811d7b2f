package httpx

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/http/handlers"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/http/middleware"
	"github.com/tanbro/sipxrtc-demo-trtc-web/internal/logging"
)

// Route is one entry of the routing table
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// RouterConfig holds what BuildRouter needs besides the handlers
type RouterConfig struct {
	ApplicationRoot  string
	IndexTemplate    string
	CORSEnabled      bool
	CORSAllowOrigins []string
}

// Routes returns the complete routing table
func Routes(ch *handlers.CallHandlers, ph *handlers.PageHandlers) []Route {
	routes := []Route{
		{http.MethodGet, "/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }},
		{http.MethodGet, "/hello", ph.Hello},
		{http.MethodPost, "/sms_code", ch.SMSCode},
		{http.MethodPost, "/enter_room", ch.EnterRoom},
		{http.MethodPost, "/make_call", ch.MakeCall},
		{http.MethodPost, "/exit_room", ch.ExitRoom},
		{http.MethodPost, "/call_state_notify", ch.CallStateNotify},
	}
	for _, dir := range handlers.StaticDirs {
		routes = append(routes, Route{http.MethodGet, "/" + dir + "/*filepath", ph.Static(dir)})
	}
	return routes
}

// BuildRouter mounts Routes under cfg.ApplicationRoot with the session cookie
// loaded for every request. The index page is served only when a template is
// configured.
func BuildRouter(cfg RouterConfig, logger *zap.Logger, sessions *middleware.Sessions, ch *handlers.CallHandlers, ph *handlers.PageHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))
	if cfg.CORSEnabled {
		r.Use(middleware.CORS(cfg.CORSAllowOrigins))
	}

	root := r.Group(cfg.ApplicationRoot)
	root.Use(sessions.Load())
	for _, route := range Routes(ch, ph) {
		root.Handle(route.Method, route.Path, route.Handler)
	}

	if cfg.IndexTemplate != "" {
		r.SetFuncMap(template.FuncMap{"static": ph.StaticURL})
		r.LoadHTMLFiles(cfg.IndexTemplate)
		root.GET("/", ph.Index)
	}

	return r
}
