package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/travelease-dev/travelease/internal/apiclient"
	"github.com/travelease-dev/travelease/internal/authsession"
	"github.com/travelease-dev/travelease/internal/forms"
	"github.com/travelease-dev/travelease/internal/guard"
	"github.com/travelease-dev/travelease/internal/models"
	"github.com/travelease-dev/travelease/internal/nav"
	"github.com/travelease-dev/travelease/internal/places"
	"github.com/travelease-dev/travelease/internal/routes"
)

func currentRoute(c *gin.Context) routes.Route {
	if v, ok := c.Get(routeKey); ok {
		if route, ok := v.(routes.Route); ok {
			return route
		}
	}
	return routes.Route{View: routes.ViewNotFound}
}

func (s *Server) staticView(c *gin.Context) {
	s.render(c, http.StatusOK, s.newPage(c, currentRoute(c).View))
}

func (s *Server) notFoundView(c *gin.Context) {
	s.render(c, http.StatusNotFound, s.newPage(c, routes.ViewNotFound))
}

func (s *Server) loginView(c *gin.Context) {
	page := s.newPage(c, routes.ViewLogin)
	if from := fromQuery(c.Query(fromParam)); from != nil {
		page.From = from.String()
	}
	s.render(c, http.StatusOK, page)
}

// placesQuery reads list filters from the query string
func placesQuery(c *gin.Context) places.Query {
	q := places.DefaultQuery()
	q.Search = c.Query("q")
	if v := c.Query("category"); v != "" {
		q.Category = v
	}
	if v := c.Query("status"); v != "" {
		q.Status = v
	}
	if v := c.Query("sort"); v != "" {
		q.SortBy = v
	}
	q.Desc = c.Query("order") == "desc"
	if v, err := strconv.ParseFloat(c.Query("minRating"), 64); err == nil {
		q.MinRating = v
	}
	if v, err := strconv.Atoi(c.Query("minPrice")); err == nil {
		q.MinPrice = v
	}
	if v, err := strconv.Atoi(c.Query("maxPrice")); err == nil {
		q.MaxPrice = v
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(c.Query("pageSize")); err == nil {
		q.PageSize = v
	}
	return q
}

func (s *Server) listPlaces(c *gin.Context, view string, q places.Query) {
	page := s.newPage(c, view)

	list, err := s.api.ListPlaces(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch places")
		page.Error = "Failed to load places"
		s.render(c, upstreamStatus(err), page)
		return
	}

	result, err := places.Apply(list, q)
	if err != nil {
		page.Error = err.Error()
		s.render(c, http.StatusBadRequest, page)
		return
	}

	page.Places = result.Items
	page.Paging = &Paging{Total: result.Total, Page: result.Page, Pages: result.Pages}
	s.render(c, http.StatusOK, page)
}

func (s *Server) placesView(c *gin.Context) {
	q := placesQuery(c)
	q.Status = places.All
	s.listPlaces(c, routes.ViewPlaces, q)
}

func (s *Server) adminPlacesView(c *gin.Context) {
	s.listPlaces(c, routes.ViewAdminPlaces, placesQuery(c))
}

func (s *Server) placeDetailView(c *gin.Context) {
	page := s.newPage(c, routes.ViewPlaceDetail)
	page.Params = routes.Params{"id": c.Param("id")}

	place, err := s.api.GetPlace(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.logger.Warn().Err(err).Str("place_id", c.Param("id")).Msg("Failed to fetch place")
		page.Error = "Place not found"
		s.render(c, upstreamStatus(err), page)
		return
	}

	page.Place = place
	s.render(c, http.StatusOK, page)
}

func (s *Server) routeFinderView(c *gin.Context) {
	page := s.newPage(c, routes.ViewRouteFinder)

	var form forms.RouteSearch
	if err := c.ShouldBindQuery(&form); err != nil || form.Empty() {
		page.Search = &forms.RouteSearch{Mode: models.ModeDriving}
		s.render(c, http.StatusOK, page)
		return
	}

	err := form.Validate()
	page.Search = &form
	if err != nil {
		page.Error = err.Error()
		s.render(c, http.StatusBadRequest, page)
		return
	}

	route, err := s.api.FindRoute(c.Request.Context(), form.Request())
	if err != nil {
		s.logger.Warn().Err(err).
			Str("origin", form.Origin).
			Str("destination", form.Destination).
			Msg("Failed to find route")
		page.Error = "Failed to find a route"
		var statusErr *apiclient.HTTPStatusError
		if errors.As(err, &statusErr) {
			if msg := statusErr.Message(); msg != "" {
				page.Error = msg
			}
		}
		s.render(c, upstreamStatus(err), page)
		return
	}

	page.Route = route
	s.render(c, http.StatusOK, page)
}

// upstreamStatus maps a request client failure onto the view's status
func upstreamStatus(err error) int {
	var statusErr *apiclient.HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
			return statusErr.Code
		}
	}
	return http.StatusBadGateway
}

// formError renders a form view with a message the user can act on
func (s *Server) formError(c *gin.Context, view string, status int, msg, email, from string) {
	page := s.newPage(c, view)
	page.Error = msg
	page.Email = email
	page.From = from
	s.render(c, status, page)
}

func (s *Server) login(c *gin.Context) {
	var form forms.Login
	if err := c.ShouldBind(&form); err != nil {
		s.formError(c, routes.ViewLogin, http.StatusBadRequest, forms.MsgLoginRequired, "", "")
		return
	}

	from := fromQuery(form.From)
	fromStr := ""
	if from != nil {
		fromStr = from.String()
	}

	if err := form.Validate(); err != nil {
		s.formError(c, routes.ViewLogin, http.StatusBadRequest, err.Error(), form.Email, fromStr)
		return
	}

	if _, err := s.manager.Login(c.Request.Context(), form.Email, form.Password, form.RememberMe); err != nil {
		var authErr *authsession.AuthError
		msg := err.Error()
		if errors.As(err, &authErr) {
			msg = authErr.Message
		}
		s.formError(c, routes.ViewLogin, http.StatusUnauthorized, msg, form.Email, fromStr)
		return
	}

	c.Redirect(http.StatusSeeOther, nav.ReturnTo(nav.Location{Path: guard.LoginPath, From: from}, guard.HomePath))
}

func (s *Server) register(c *gin.Context) {
	var form forms.Register
	if err := c.ShouldBind(&form); err != nil {
		s.formError(c, routes.ViewRegister, http.StatusBadRequest, forms.MsgAllRequired, "", "")
		return
	}

	if err := form.Validate(); err != nil {
		s.formError(c, routes.ViewRegister, http.StatusBadRequest, err.Error(), form.Email, "")
		return
	}

	if _, err := s.manager.Register(c.Request.Context(), form.Request()); err != nil {
		s.formError(c, routes.ViewRegister, http.StatusBadRequest, err.Error(), form.Email, "")
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) logout(c *gin.Context) {
	s.manager.Logout(withNavigator(c).Context())
}
