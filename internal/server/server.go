package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"kgportal/internal/handlers"
	authMiddleware "kgportal/internal/middleware"
	"kgportal/internal/navigator"
	"kgportal/internal/session"
	"kgportal/web/templates/pages"
)

// Options are the collaborators of the HTTP server.
type Options struct {
	Store         session.Store
	Accounts      handlers.Accounts
	Verifier      handlers.TokenVerifier
	SessionTTL    time.Duration
	SecureCookies bool
	Logger        *zap.Logger
}

// New builds the Echo instance with the application route table. It fails
// only if the route table is invalid.
func New(opts Options) (*echo.Echo, *navigator.Navigator, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	nav, err := navigator.New(
		navigator.DefaultRoutes(pages.Login(), pages.Home()),
		session.NewFlag(opts.Store, log),
		navigator.WithLogger(log.Named("navigator")),
	)
	if err != nil {
		return nil, nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler(log)

	e.Use(authMiddleware.RequestLogger(log.Named("http")))
	e.Use(echomw.Recover())
	e.Use(authMiddleware.Session(authMiddleware.SessionConfig{
		MaxAge: opts.SessionTTL,
		Secure: opts.SecureCookies,
	}))

	authHandler := handlers.NewAuthHandler(opts.Accounts, opts.Verifier, opts.Store, nav, opts.SessionTTL, log.Named("auth"))
	pageHandler := handlers.NewPageHandler(opts.Store, log)

	// Session writes
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/register", authHandler.HandleRegister)
	e.POST("/auth/logout", authHandler.HandleLogout)

	// Every page path goes through the navigator
	e.Match([]string{http.MethodGet, http.MethodHead}, "/*", pageHandler.Render, authMiddleware.Guard(nav))

	return e, nav, nil
}
