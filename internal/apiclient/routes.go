package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/travelease-dev/travelease/internal/models"
)

// ErrRouteEndpoints is returned when an origin or destination is missing
var ErrRouteEndpoints = errors.New("origin and destination are required")

// RouteRequest asks the route finder for a route between two places
type RouteRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Mode        string `json:"mode"`
}

func (r RouteRequest) normalized() (RouteRequest, error) {
	if r.Origin == "" || r.Destination == "" {
		return r, ErrRouteEndpoints
	}
	if r.Mode == "" {
		r.Mode = models.ModeDriving
	}
	return r, nil
}

// CostEstimate is the backend's price estimate for a trip
type CostEstimate struct {
	Cost     float64 `json:"cost"`
	Currency string  `json:"currency,omitempty"`
}

// FindRoute asks the backend for a route. Mode defaults to driving.
func (c *Client) FindRoute(ctx context.Context, req RouteRequest) (*models.TravelRoute, error) {
	req, err := req.normalized()
	if err != nil {
		return nil, err
	}

	var route models.TravelRoute
	if err := c.Do(ctx, http.MethodPost, "/api/routes/find", req, &route); err != nil {
		return nil, err
	}
	if route.Origin == "" {
		route.Origin = req.Origin
	}
	if route.Destination == "" {
		route.Destination = req.Destination
	}
	if route.Mode == "" {
		route.Mode = req.Mode
	}
	return &route, nil
}

// EstimateCost asks the backend what a trip would cost without planning it
func (c *Client) EstimateCost(ctx context.Context, req RouteRequest) (*CostEstimate, error) {
	req, err := req.normalized()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("origin", req.Origin)
	q.Set("destination", req.Destination)
	q.Set("mode", req.Mode)

	var estimate CostEstimate
	if err := c.Do(ctx, http.MethodGet, "/api/routes/estimate-cost?"+q.Encode(), nil, &estimate); err != nil {
		return nil, err
	}
	return &estimate, nil
}
