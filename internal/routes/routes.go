// Package routes holds the application's route table and resolves a
// requested location to the view that should be shown, applying guards.
package routes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/travelease-dev/travelease/internal/guard"
	"github.com/travelease-dev/travelease/internal/nav"
)

// NotFoundPath is where unknown locations are sent
const NotFoundPath = "/404"

// maxRedirects bounds guard redirect chains
const maxRedirects = 8

var ErrTooManyRedirects = errors.New("too many redirects")

// Access is the guard a route is protected by
type Access int

const (
	Public Access = iota
	Authenticated
	Admin
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// View names
const (
	ViewHome           = "home"
	ViewLogin          = "login"
	ViewRegister       = "register"
	ViewRouteFinder    = "route-finder"
	ViewPlaces         = "places"
	ViewPlaceDetail    = "place-detail"
	ViewProfile        = "profile"
	ViewAdminDashboard = "admin-dashboard"
	ViewAdminPlaces    = "admin-places"
	ViewNotFound       = "not-found"
)

// Route binds a path pattern to a view. Pattern segments starting with ':'
// match any single non-empty segment.
type Route struct {
	Pattern string
	View    string
	Access  Access
}

// Table is the application's route table
var Table = []Route{
	{Pattern: "/", View: ViewHome, Access: Public},
	{Pattern: "/login", View: ViewLogin, Access: Public},
	{Pattern: "/register", View: ViewRegister, Access: Public},
	{Pattern: "/routes", View: ViewRouteFinder, Access: Authenticated},
	{Pattern: "/places", View: ViewPlaces, Access: Public},
	{Pattern: "/places/:id", View: ViewPlaceDetail, Access: Public},
	{Pattern: "/profile", View: ViewProfile, Access: Authenticated},
	{Pattern: "/admin", View: ViewAdminDashboard, Access: Admin},
	{Pattern: "/admin/places", View: ViewAdminPlaces, Access: Admin},
	{Pattern: NotFoundPath, View: ViewNotFound, Access: Public},
}

// Params are the values captured by ':name' pattern segments
type Params map[string]string

// Match reports whether path matches the route's pattern and returns the
// captured params
func (r Route) Match(path string) (Params, bool) {
	want := splitPath(r.Pattern)
	got := splitPath(path)
	if len(want) != len(got) {
		return nil, false
	}

	var params Params
	for i, seg := range want {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if got[i] == "" {
				return nil, false
			}
			if params == nil {
				params = Params{}
			}
			params[name] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Result is where an Open call ended up
type Result struct {
	Route    Route
	Params   Params
	Decision guard.Decision
	Location nav.Location
}

// Router resolves locations against the route table
type Router struct {
	routes []Route
	guards map[Access]guard.Guard
	logger zerolog.Logger
}

// Option customizes a Router
type Option func(*Router)

// WithRoutes replaces the route table
func WithRoutes(routes []Route) Option {
	return func(r *Router) {
		r.routes = routes
	}
}

// WithLogger sets the router's logger
func WithLogger(log zerolog.Logger) Option {
	return func(r *Router) {
		r.logger = log
	}
}

// New creates a router whose guards read src
func New(src guard.Source, opts ...Option) *Router {
	r := &Router{
		routes: Table,
		guards: map[Access]guard.Guard{
			Public:        guard.Public(),
			Authenticated: guard.RequireAuth(src),
			Admin:         guard.RequireAdmin(src),
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Routes returns the route table in match order
func (r *Router) Routes() []Route {
	return r.routes
}

// Resolve finds the first route matching path
func (r *Router) Resolve(path string) (Route, Params, bool) {
	for _, route := range r.routes {
		if params, ok := route.Match(path); ok {
			return route, params, true
		}
	}
	return Route{}, nil, false
}

// Guard returns the guard protecting route
func (r *Router) Guard(route Route) guard.Guard {
	if g, ok := r.guards[route.Access]; ok {
		return g
	}
	return r.guards[Admin]
}

// Check evaluates the guard of the route matching loc without navigating.
// ok is false when no route matches.
func (r *Router) Check(loc nav.Location) (Route, Params, guard.Decision, bool) {
	route, params, ok := r.Resolve(loc.Path)
	if !ok {
		return Route{}, nil, guard.Decision{}, false
	}
	return route, params, r.Guard(route)(loc), true
}

// Open navigates n to raw and follows guard and not-found redirects until a
// view is allowed or the session is still loading. Redirects replace the
// current history entry.
func (r *Router) Open(n nav.Navigator, raw string) (Result, error) {
	n.Navigate(raw)

	for hops := 0; hops <= maxRedirects; hops++ {
		loc := n.Location()

		route, params, decision, ok := r.Check(loc)
		if !ok {
			r.logger.Debug().Str("path", loc.Path).Msg("No route matched")
			n.Navigate(NotFoundPath, nav.Replace())
			continue
		}

		if decision.Outcome != guard.Redirect {
			return Result{Route: route, Params: params, Decision: decision, Location: loc}, nil
		}

		r.logger.Debug().
			Str("from", decision.From.String()).
			Str("to", decision.To).
			Str("view", route.View).
			Msg("Guard redirect")
		n.Navigate(decision.To, nav.Replace(), nav.From(decision.From))
	}

	return Result{}, fmt.Errorf("open %s: %w", raw, ErrTooManyRedirects)
}
