package web

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/travelease-dev/travelease/internal/guard"
	"github.com/travelease-dev/travelease/internal/nav"
	"github.com/travelease-dev/travelease/internal/routes"
)

const (
	fromParam  = "from"
	routeKey   = "route"
	loadingTTL = "1"
)

// requestLocation is the in-app location of the current request
func requestLocation(c *gin.Context) nav.Location {
	return nav.Location{Path: c.Request.URL.Path, RawQuery: c.Request.URL.RawQuery}
}

// redirectTarget renders a navigation target, carrying from as a query
// parameter
func redirectTarget(to string, from *nav.Location) string {
	if from == nil {
		return to
	}
	loc := nav.Parse(to)
	q, _ := url.ParseQuery(loc.RawQuery)
	q.Set(fromParam, from.String())
	loc.RawQuery = q.Encode()
	return loc.String()
}

// fromQuery reads the location carried in the from query parameter. Only
// in-app paths are accepted.
func fromQuery(raw string) *nav.Location {
	if raw == "" || !nav.IsLocalPath(raw) {
		return nil
	}
	loc := nav.Parse(raw)
	return &loc
}

// guardMiddleware evaluates the route's guard before its view runs
func (s *Server) guardMiddleware(route routes.Route) gin.HandlerFunc {
	check := s.routes.Guard(route)

	return func(c *gin.Context) {
		c.Set(routeKey, route)

		decision := check(requestLocation(c))
		switch decision.Outcome {
		case guard.Pending:
			c.Header("Retry-After", loadingTTL)
			s.render(c, http.StatusServiceUnavailable, s.newPage(c, viewLoading))
			c.Abort()
		case guard.Redirect:
			s.logger.Debug().
				Str("view", route.View).
				Str("to", decision.To).
				Msg("Guard redirect")
			c.Redirect(http.StatusFound, redirectTarget(decision.To, &decision.From))
			c.Abort()
		default:
			c.Next()
		}
	}
}

// ginNavigator lets navigation triggered inside a handler (logout) redirect
// the current response
type ginNavigator struct {
	c      *gin.Context
	status int
}

func (n *ginNavigator) Location() nav.Location {
	return requestLocation(n.c)
}

func (n *ginNavigator) Navigate(to string, opts ...nav.Option) {
	o := nav.Apply(opts...)
	n.c.Redirect(n.status, redirectTarget(to, o.From))
}

// withNavigator scopes a redirecting navigator to the request's context
func withNavigator(c *gin.Context) *http.Request {
	n := &ginNavigator{c: c, status: http.StatusSeeOther}
	return c.Request.WithContext(nav.WithNavigator(c.Request.Context(), n))
}
