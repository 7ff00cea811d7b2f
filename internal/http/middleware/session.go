package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

const sessionContextKey = "verification_session"

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name     string
	Path     string
	Secure   bool
	Lifetime time.Duration
}

// Sessions loads the verification session from its cookie and writes it back
type Sessions struct {
	codec  domain.SessionCodec
	cookie CookieConfig
	logger *zap.Logger
}

// NewSessions creates the cookie session store
func NewSessions(codec domain.SessionCodec, cookie CookieConfig, logger *zap.Logger) *Sessions {
	return &Sessions{
		codec:  codec,
		cookie: cookie,
		logger: logger.Named("session"),
	}
}

// Load decodes the session cookie into the request context. A missing or
// unverifiable cookie yields an empty session.
func (s *Sessions) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := &domain.VerificationSession{}
		if token, err := c.Cookie(s.cookie.Name); err == nil && token != "" {
			decoded, err := s.codec.Decode(token)
			if err != nil {
				s.logger.Debug("discarding session cookie", zap.Error(err))
			} else {
				session = decoded
			}
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// Save writes the session cookie. Must be called before the response body.
func (s *Sessions) Save(c *gin.Context, session *domain.VerificationSession) error {
	c.SetSameSite(http.SameSiteLaxMode)
	if session.IsEmpty() {
		c.SetCookie(s.cookie.Name, "", -1, s.cookie.Path, "", s.cookie.Secure, true)
		return nil
	}

	token, err := s.codec.Encode(session)
	if err != nil {
		return err
	}
	c.SetCookie(s.cookie.Name, token, int(s.cookie.Lifetime/time.Second), s.cookie.Path, "", s.cookie.Secure, true)
	return nil
}

// GetSession returns the session loaded for this request, never nil
func GetSession(c *gin.Context) *domain.VerificationSession {
	if v, ok := c.Get(sessionContextKey); ok {
		if session, ok := v.(*domain.VerificationSession); ok {
			return session
		}
	}
	return &domain.VerificationSession{}
}
