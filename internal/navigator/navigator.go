package navigator

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// SessionFlagKey is the session key holding the login marker.
const SessionFlagKey = "isLoggedIn"

// SessionState reads the raw session flag for the session bound to ctx.
// ok is false when no flag is stored.
type SessionState interface {
	Flag(ctx context.Context) (value string, ok bool)
}

// SessionStateFunc adapts a function to SessionState.
type SessionStateFunc func(ctx context.Context) (string, bool)

// Flag calls f(ctx).
func (f SessionStateFunc) Flag(ctx context.Context) (string, bool) {
	return f(ctx)
}

// IsLoggedIn reports whether a stored flag value marks the session as
// authenticated. Absent, blank and "false" (any case) values are logged out;
// every other value is logged in.
func IsLoggedIn(value string, ok bool) bool {
	if !ok {
		return false
	}
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, "false")
}

// Request is a single navigation attempt.
type Request struct {
	Target string
	Origin string
}

// Outcome discriminates a Decision.
type Outcome int

const (
	Proceed Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of resolving a Request.
type Decision struct {
	Outcome Outcome
	// View is set when Outcome is Proceed.
	View View
	// Route is the matched route when Outcome is Proceed.
	Route Route
	// Location is set when Outcome is Redirect.
	Location string
}

// ProceedTo returns a Decision that renders the route's view.
func ProceedTo(r Route) Decision {
	return Decision{Outcome: Proceed, View: r.View, Route: r}
}

// RedirectTo returns a Decision that redirects to path.
func RedirectTo(path string) Decision {
	return Decision{Outcome: Redirect, Location: path}
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the logger used for navigation decisions.
func WithLogger(l *zap.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.log = l
		}
	}
}

// Navigator resolves paths against an immutable route table and guards
// every route except the login page behind the session flag.
type Navigator struct {
	routes   []Route
	byPath   map[string]int
	byName   map[string]int
	sessions SessionState
	log      *zap.Logger
}

// New validates routes and returns a Navigator reading the session flag
// through sessions. A nil sessions treats every request as logged out.
func New(routes []Route, sessions SessionState, opts ...Option) (*Navigator, error) {
	n := &Navigator{
		routes:   make([]Route, 0, len(routes)),
		byPath:   make(map[string]int, len(routes)),
		byName:   make(map[string]int, len(routes)),
		sessions: sessions,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}

	for _, r := range routes {
		if r.Path == "" || !strings.HasPrefix(r.Path, "/") {
			return nil, &ConfigurationError{Path: r.Path, Reason: "path must start with /"}
		}
		r.Path = normalize(r.Path)
		if _, dup := n.byPath[r.Path]; dup {
			return nil, &ConfigurationError{Path: r.Path, Reason: "duplicate path"}
		}
		if r.Name != "" {
			if _, dup := n.byName[r.Name]; dup {
				return nil, &ConfigurationError{Path: r.Path, Reason: "duplicate name " + r.Name}
			}
			n.byName[r.Name] = len(n.routes)
		}
		if r.IsRedirect() == (r.View != nil) {
			return nil, &ConfigurationError{Path: r.Path, Reason: "route needs exactly one of view or redirect"}
		}
		n.byPath[r.Path] = len(n.routes)
		n.routes = append(n.routes, r)
	}

	login, ok := n.byPath[LoginPath]
	if !ok {
		return nil, &ConfigurationError{Reason: "missing " + LoginPath + " route"}
	}
	if n.routes[login].IsRedirect() {
		return nil, &ConfigurationError{Path: LoginPath, Reason: "login route must render a view"}
	}
	for _, r := range n.routes {
		if !r.IsRedirect() {
			continue
		}
		if _, ok := n.byPath[normalize(r.Redirect)]; !ok {
			return nil, &ConfigurationError{Path: r.Path, Reason: "redirect target " + r.Redirect + " is not registered"}
		}
	}

	return n, nil
}

// Resolve decides where req leads. Static redirects apply before the guard,
// the login page is always reachable, and every other route requires a
// logged-in session. The original target is not kept on redirect.
func (n *Navigator) Resolve(ctx context.Context, req Request) (Decision, error) {
	target := normalize(req.Target)
	idx, ok := n.byPath[target]
	if !ok {
		n.log.Debug("navigation not found", zap.String("target", req.Target), zap.String("origin", req.Origin))
		return Decision{}, &NotFoundError{Path: req.Target}
	}
	route := n.routes[idx]

	var d Decision
	switch {
	case route.IsRedirect():
		d = RedirectTo(route.Redirect)
	case target == LoginPath:
		d = ProceedTo(route)
	case n.loggedIn(ctx):
		d = ProceedTo(route)
	default:
		d = RedirectTo(LoginPath)
	}

	n.log.Debug("navigation resolved",
		zap.String("target", target),
		zap.String("origin", req.Origin),
		zap.Stringer("outcome", d.Outcome),
		zap.String("location", d.Location),
	)
	return d, nil
}

// PathFor returns the path of the route registered under name.
func (n *Navigator) PathFor(name string) (string, bool) {
	idx, ok := n.byName[name]
	if !ok {
		return "", false
	}
	return n.routes[idx].Path, true
}

// Routes returns a copy of the registered route table in registration order.
func (n *Navigator) Routes() []Route {
	out := make([]Route, len(n.routes))
	copy(out, n.routes)
	return out
}

func (n *Navigator) loggedIn(ctx context.Context) bool {
	if n.sessions == nil {
		return false
	}
	return IsLoggedIn(n.sessions.Flag(ctx))
}

// normalize drops a single trailing slash, keeping the root as "/".
func normalize(p string) string {
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return strings.TrimSuffix(p, "/")
	}
	return p
}
