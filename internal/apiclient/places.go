package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/travelease-dev/travelease/internal/models"
)

// ListPlaces returns every place the API knows about
func (c *Client) ListPlaces(ctx context.Context) ([]models.Place, error) {
	var places []models.Place
	if err := c.Do(ctx, http.MethodGet, "/api/places", nil, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// GetPlace returns a single place by ID
func (c *Client) GetPlace(ctx context.Context, id string) (*models.Place, error) {
	if id == "" {
		return nil, fmt.Errorf("place id is required")
	}

	var place models.Place
	path := fmt.Sprintf("/api/places/%s", url.PathEscape(id))
	if err := c.Do(ctx, http.MethodGet, path, nil, &place); err != nil {
		return nil, err
	}
	return &place, nil
}
