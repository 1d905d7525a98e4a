package navigator

import (
	"github.com/a-h/templ"
)

// Well-known paths of the route table.
const (
	RootPath  = "/"
	LoginPath = "/login"
	HomePath  = "/home"
)

// View is an opaque renderable page handle.
type View = templ.Component

// Route maps a path to either a View or a static Redirect target.
type Route struct {
	Path     string
	Name     string
	View     View
	Redirect string
}

// IsRedirect reports whether the route is a static redirect.
func (r Route) IsRedirect() bool {
	return r.Redirect != ""
}

// DefaultRoutes returns the application's route table.
func DefaultRoutes(login, home View) []Route {
	return []Route{
		{Path: RootPath, Redirect: LoginPath},
		{Path: LoginPath, Name: "Login", View: login},
		{Path: HomePath, Name: "Home", View: home},
	}
}
