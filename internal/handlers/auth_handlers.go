package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"kgportal/internal/accounts"
	"kgportal/internal/middleware"
	"kgportal/internal/models"
	"kgportal/internal/navigator"
	"kgportal/internal/session"
)

const sessionUsernameKey = "username"

const (
	errCodeInvalidCredentials = "invalid_credentials"
	errCodePasswordMismatch   = "password_mismatch"
	errCodeUserExists         = "user_exists"
	errCodeMissingFields      = "missing_fields"
	errCodeAuthNotConfigured  = "auth_not_configured"
)

// Accounts checks credentials and creates accounts.
type Accounts interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, username, password, confirm string) (*models.User, error)
	LinkIdentity(ctx context.Context, uid, email string) (*models.User, error)
}

// TokenVerifier verifies identity provider ID tokens. *auth.Client
// satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// AuthHandler owns writes to the session login flag.
type AuthHandler struct {
	accounts Accounts
	verifier TokenVerifier
	store    session.Store
	homePath string
	ttl      time.Duration
	log      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. verifier may be nil when no
// identity provider is configured.
func NewAuthHandler(accts Accounts, verifier TokenVerifier, store session.Store, nav *navigator.Navigator, ttl time.Duration, log *zap.Logger) *AuthHandler {
	home, ok := nav.PathFor("Home")
	if !ok {
		home = navigator.HomePath
	}
	return &AuthHandler{
		accounts: accts,
		verifier: verifier,
		store:    store,
		homePath: home,
		ttl:      ttl,
		log:      log,
	}
}

// HandleLogin signs the session in, either with username and password or
// with a Bearer ID token.
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		return h.loginWithToken(c, authHeader)
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid login payload")
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		return h.fail(c, http.StatusUnauthorized, errCodeInvalidCredentials)
	}
	if err != nil {
		return err
	}

	return h.signIn(c, user.Username)
}

func (h *AuthHandler) loginWithToken(c echo.Context, authHeader string) error {
	if h.verifier == nil {
		return h.fail(c, http.StatusServiceUnavailable, errCodeAuthNotConfigured)
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return h.fail(c, http.StatusUnauthorized, errCodeInvalidCredentials)
	}

	token, err := h.verifier.VerifyIDToken(c.Request().Context(), tokenString)
	if err != nil {
		h.log.Debug("id token rejected", zap.Error(err))
		return h.fail(c, http.StatusUnauthorized, errCodeInvalidCredentials)
	}

	email, _ := token.Claims["email"].(string)
	user, err := h.accounts.LinkIdentity(c.Request().Context(), token.UID, email)
	if errors.Is(err, accounts.ErrUserExists) {
		return h.fail(c, http.StatusConflict, errCodeUserExists)
	}
	if err != nil {
		return err
	}
	return h.signIn(c, user.Username)
}

// HandleRegister creates an account and signs the session in.
func (h *AuthHandler) HandleRegister(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid registration payload")
	}

	user, err := h.accounts.Register(c.Request().Context(), req.Username, req.Password, req.ConfirmPassword)
	switch {
	case errors.Is(err, accounts.ErrPasswordMismatch):
		return h.fail(c, http.StatusBadRequest, errCodePasswordMismatch)
	case errors.Is(err, accounts.ErrMissingFields):
		return h.fail(c, http.StatusBadRequest, errCodeMissingFields)
	case errors.Is(err, accounts.ErrUserExists):
		return h.fail(c, http.StatusConflict, errCodeUserExists)
	case err != nil:
		return err
	}

	return h.signIn(c, user.Username)
}

// HandleLogout clears the session login flag.
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	ctx := c.Request().Context()
	if sid, ok := session.IDFromContext(ctx); ok {
		if err := h.clear(ctx, sid); err != nil {
			return err
		}
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "logged out",
		})
	}
	return c.Redirect(http.StatusSeeOther, navigator.LoginPath)
}

func (h *AuthHandler) signIn(c echo.Context, username string) error {
	ctx := c.Request().Context()
	oldID, ok := session.IDFromContext(ctx)
	if !ok {
		return errors.New("request has no session")
	}

	// The signed-in session always gets a new id.
	sid := session.NewID()
	if err := h.store.Set(ctx, sid, sessionUsernameKey, username, h.ttl); err != nil {
		return err
	}
	if err := h.store.Set(ctx, sid, navigator.SessionFlagKey, "true", h.ttl); err != nil {
		return err
	}
	if err := h.clear(ctx, oldID); err != nil {
		return err
	}
	middleware.IssueSession(c, sid)
	h.log.Info("signed in", zap.String("username", username))

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, map[string]string{
			"status":   "success",
			"redirect": h.homePath,
		})
	}
	return c.Redirect(http.StatusSeeOther, h.homePath)
}

func (h *AuthHandler) clear(ctx context.Context, sid string) error {
	for _, key := range []string{navigator.SessionFlagKey, sessionUsernameKey} {
		if err := h.store.Delete(ctx, sid, key); err != nil {
			return err
		}
	}
	return nil
}

func (h *AuthHandler) fail(c echo.Context, status int, code string) error {
	if wantsJSON(c) {
		return c.JSON(status, map[string]string{
			"error": loginErrorMessages[code],
		})
	}
	return c.Redirect(http.StatusSeeOther, navigator.LoginPath+"?error="+url.QueryEscape(code))
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return true
	}
	if req.Header.Get(echo.HeaderAuthorization) != "" {
		return true
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
