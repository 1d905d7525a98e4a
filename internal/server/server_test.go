package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgportal/internal/accounts"
	"kgportal/internal/navigator"
	"kgportal/internal/session"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if token != "good-token" {
		return nil, errors.New("token rejected")
	}
	return &auth.Token{UID: "uid-1", Claims: map[string]interface{}{"email": "ada@example.com"}}, nil
}

type client struct {
	t       *testing.T
	e       *echo.Echo
	cookies []*http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return c.do(req)
}

func newTestServer(t *testing.T) (*client, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	svc := accounts.NewService(accounts.NewMemoryUserRepository())
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "123"))

	e, _, err := New(Options{
		Store:      store,
		Accounts:   svc,
		Verifier:   fakeVerifier{},
		SessionTTL: time.Hour,
	})
	require.NoError(t, err)
	return &client{t: t, e: e}, store
}

func TestAnonymousNavigation(t *testing.T) {
	c, _ := newTestServer(t)

	rec := c.get("/home")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	require.Len(t, c.cookies, 1)
	assert.Equal(t, "sid", c.cookies[0].Name)

	rec = c.get("/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = c.get("/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/auth/login"`)

	rec = c.get("/nonexistent")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page Not Found")
}

func TestLoginLogoutFlow(t *testing.T) {
	c, _ := newTestServer(t)
	c.get("/login")

	rec := c.postForm("/auth/login", url.Values{"username": {"admin"}, "password": {"123"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get(echo.HeaderLocation))

	rec = c.get("/home")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome, admin")

	rec = c.get("/")
	assert.Equal(t, http.StatusFound, rec.Code, "root redirects even when logged in")
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = c.get("/login")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.postForm("/auth/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = c.get("/home")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	c, _ := newTestServer(t)
	c.get("/login")

	rec := c.postForm("/auth/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?error=invalid_credentials", rec.Header().Get(echo.HeaderLocation))

	rec = c.get("/login?error=invalid_credentials")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password.")

	rec = c.get("/home")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestJSONLogin(t *testing.T) {
	c, _ := newTestServer(t)
	c.get("/login")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := c.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "/home", body["redirect"])

	assert.Equal(t, http.StatusOK, c.get("/home").Code)
}

func TestTokenLogin(t *testing.T) {
	c, _ := newTestServer(t)
	c.get("/login")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer bad-token")
	assert.Equal(t, http.StatusUnauthorized, c.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good-token")
	assert.Equal(t, http.StatusOK, c.do(req).Code)

	rec := c.get("/home")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")
}

func TestRegister(t *testing.T) {
	c, _ := newTestServer(t)
	c.get("/login")

	rec := c.postForm("/auth/register", url.Values{
		"username": {"bob"}, "password": {"pw"}, "confirm_password": {"other"},
	})
	assert.Equal(t, "/login?error=password_mismatch", rec.Header().Get(echo.HeaderLocation))

	rec = c.postForm("/auth/register", url.Values{
		"username": {"bob"}, "password": {"pw"}, "confirm_password": {"pw"},
	})
	assert.Equal(t, "/home", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, http.StatusOK, c.get("/home").Code)

	rec = c.postForm("/auth/register", url.Values{
		"username": {"bob"}, "password": {"pw"}, "confirm_password": {"pw"},
	})
	assert.Equal(t, "/login?error=user_exists", rec.Header().Get(echo.HeaderLocation))
}

func TestFlagValuesFromStore(t *testing.T) {
	c, store := newTestServer(t)
	c.get("/login")
	require.Len(t, c.cookies, 1)
	sid := c.cookies[0].Value

	for _, tc := range []struct {
		value string
		code  int
	}{
		{"false", http.StatusFound},
		{"", http.StatusFound},
		{"true", http.StatusOK},
		{"1", http.StatusOK},
	} {
		require.NoError(t, store.Set(context.Background(), sid, navigator.SessionFlagKey, tc.value, 0))
		assert.Equal(t, tc.code, c.get("/home").Code, "flag %q", tc.value)
	}
}

func TestInvalidSessionCookieIsReplaced(t *testing.T) {
	c, _ := newTestServer(t)
	c.cookies = []*http.Cookie{{Name: "sid", Value: "forged"}}

	c.get("/login")
	require.Len(t, c.cookies, 1)
	assert.True(t, session.ValidID(c.cookies[0].Value))
}

func TestLoginRotatesSessionID(t *testing.T) {
	victim, store := newTestServer(t)
	planted := "11111111-2222-3333-4444-555555555555"
	victim.cookies = []*http.Cookie{{Name: "sid", Value: planted}}

	rec := victim.postForm("/auth/login", url.Values{"username": {"admin"}, "password": {"123"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, victim.cookies, 1)
	assert.NotEqual(t, planted, victim.cookies[0].Value)
	assert.Equal(t, http.StatusOK, victim.get("/home").Code)

	attacker := &client{t: t, e: victim.e, cookies: []*http.Cookie{{Name: "sid", Value: planted}}}
	rec = attacker.get("/home")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	_, ok, err := store.Get(context.Background(), planted, navigator.SessionFlagKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHeadFollowsGuard(t *testing.T) {
	c, _ := newTestServer(t)

	rec := c.do(httptest.NewRequest(http.MethodHead, "/home", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = c.do(httptest.NewRequest(http.MethodHead, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(httptest.NewRequest(http.MethodHead, "/nonexistent", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
