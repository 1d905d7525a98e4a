package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"kgportal/internal/navigator"
)

// Context keys set by Guard for downstream handlers.
const (
	ViewKey  = "view"
	RouteKey = "route"
)

// Resolver decides where a navigation request leads.
type Resolver interface {
	Resolve(ctx context.Context, req navigator.Request) (navigator.Decision, error)
}

// Guard resolves the request path through nav. Redirect decisions are
// answered with 302, unknown paths with 404, and allowed navigations pass
// the view and route to the next handler.
func Guard(nav Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			d, err := nav.Resolve(req.Context(), navigator.Request{
				Target: req.URL.Path,
				Origin: req.Referer(),
			})
			var nf *navigator.NotFoundError
			if errors.As(err, &nf) {
				return echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
			}
			if err != nil {
				return err
			}

			if d.Outcome == navigator.Redirect {
				return c.Redirect(http.StatusFound, d.Location)
			}

			c.Set(ViewKey, d.View)
			c.Set(RouteKey, d.Route)
			return next(c)
		}
	}
}
