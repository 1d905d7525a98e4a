package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"kgportal/internal/session"
)

// SessionIDKey is the echo.Context key holding the session id.
const SessionIDKey = "sessionID"

const sessionConfigKey = "sessionConfig"

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// DefaultSessionConfig is used for zero fields of SessionConfig.
var DefaultSessionConfig = SessionConfig{
	CookieName: "sid",
	MaxAge:     5 * 24 * time.Hour,
}

// Session makes sure every request carries a session id. The id is read
// from the cookie or freshly issued, and is bound to the request context.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionConfig.CookieName
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultSessionConfig.MaxAge
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(sessionConfigKey, cfg)
			if cookie, err := c.Cookie(cfg.CookieName); err == nil && session.ValidID(cookie.Value) {
				bindSession(c, cookie.Value)
			} else {
				IssueSession(c, session.NewID())
			}
			return next(c)
		}
	}
}

// IssueSession sets sid as the request's session id and sends it to the
// client as the session cookie. Use it to rotate the id when the privilege
// of a session changes.
func IssueSession(c echo.Context, sid string) {
	cfg, ok := c.Get(sessionConfigKey).(SessionConfig)
	if !ok {
		cfg = DefaultSessionConfig
	}
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    sid,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	bindSession(c, sid)
}

func bindSession(c echo.Context, sid string) {
	c.Set(SessionIDKey, sid)
	req := c.Request()
	c.SetRequest(req.WithContext(session.WithID(req.Context(), sid)))
}
