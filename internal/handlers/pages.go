package handlers

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"kgportal/internal/middleware"
	"kgportal/internal/navigator"
	"kgportal/internal/session"
	"kgportal/web/templates/shared"
)

// Messages shown on the login page for ?error= codes.
var loginErrorMessages = map[string]string{
	errCodeInvalidCredentials: "Invalid username or password.",
	errCodePasswordMismatch:   "Passwords do not match.",
	errCodeUserExists:         "That username is already taken.",
	errCodeMissingFields:      "Username and password are required.",
	errCodeAuthNotConfigured:  "Sign-in is not available right now.",
}

// PageHandler renders the view chosen by middleware.Guard.
type PageHandler struct {
	store session.Store
	log   *zap.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(store session.Store, log *zap.Logger) *PageHandler {
	return &PageHandler{store: store, log: log}
}

// Render writes the resolved view.
func (h *PageHandler) Render(c echo.Context) error {
	view, ok := c.Get(middleware.ViewKey).(templ.Component)
	if !ok || view == nil {
		return errors.New("no view resolved for request")
	}

	data := shared.PageData{
		Username: h.sessionValue(c, sessionUsernameKey),
		Flash:    loginErrorMessages[c.QueryParam("error")],
	}
	if route, ok := c.Get(middleware.RouteKey).(navigator.Route); ok && route.Name != "" {
		data.Breadcrumbs = []shared.Breadcrumb{{Title: route.Name}}
	}

	ctx := shared.WithPageData(c.Request().Context(), data)
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return view.Render(ctx, c.Response())
}

func (h *PageHandler) sessionValue(c echo.Context, key string) string {
	ctx := c.Request().Context()
	sid, ok := session.IDFromContext(ctx)
	if !ok {
		return ""
	}
	v, _, err := h.store.Get(ctx, sid, key)
	if err != nil {
		h.log.Warn("session read failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return v
}
