// Package places filters, sorts and paginates the places list on the client.
package places

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/travelease-dev/travelease/internal/models"
)

const (
	// All matches any category or status
	All = "all"

	MinPriceLevel = 0
	MaxPriceLevel = 5
)

// Sort keys
const (
	SortName       = "name"
	SortRating     = "rating"
	SortCategory   = "category"
	SortLocation   = "location"
	SortPriceLevel = "priceLevel"
	SortStatus     = "status"
)

// Query describes one view of the places list. Start from DefaultQuery; the
// zero value restricts the price range to free places.
type Query struct {
	Search    string
	Category  string  `validate:"omitempty,oneof=all attractions hotels restaurants nature shopping"`
	MinRating float64 `validate:"gte=0,lte=5"`
	MinPrice  int     `validate:"gte=0,lte=5"`
	MaxPrice  int     `validate:"gte=0,lte=5,gtefield=MinPrice"`
	Status    string  `validate:"omitempty,oneof=all active pending inactive"`
	SortBy    string  `validate:"omitempty,oneof=name rating category location priceLevel status"`
	Desc      bool
	Page      int `validate:"gte=0"`
	PageSize  int `validate:"gte=0"`
}

// DefaultQuery matches every place, sorted by name
func DefaultQuery() Query {
	return Query{
		Category: All,
		MinPrice: MinPriceLevel,
		MaxPrice: MaxPriceLevel,
		Status:   All,
		SortBy:   SortName,
		Page:     1,
	}
}

var validate = validator.New()

// Validate checks the query's ranges and enumerations
func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid places query: %w", err)
	}
	return nil
}

// Page is one page of the processed list
type Page struct {
	Items []models.Place
	// Total is the number of places matching the filters across all pages
	Total int
	Page  int
	Pages int
}

// Apply filters, sorts and paginates list. The input slice is not modified.
func Apply(list []models.Place, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}

	filtered := Filter(list, q)
	Sort(filtered, q.SortBy, q.Desc)
	return Paginate(filtered, q.Page, q.PageSize), nil
}

// Filter returns the places matching every filter in q
func Filter(list []models.Place, q Query) []models.Place {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.Place, 0, len(list))
	for _, p := range list {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if q.Category != "" && q.Category != All && p.Category != q.Category {
			continue
		}
		if q.MinRating > 0 && p.Rating < q.MinRating {
			continue
		}
		if p.PriceLevel < q.MinPrice || p.PriceLevel > q.MaxPrice {
			continue
		}
		if q.Status != "" && q.Status != All && p.Status != q.Status {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p models.Place, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Location), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Sort orders list in place by key. Equal elements keep their order. An
// empty key leaves the list untouched.
func Sort(list []models.Place, key string, desc bool) {
	compare := comparator(key)
	if compare == nil {
		return
	}
	slices.SortStableFunc(list, func(a, b models.Place) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

func comparator(key string) func(a, b models.Place) int {
	switch key {
	case SortName:
		return func(a, b models.Place) int { return compareFold(a.Name, b.Name) }
	case SortRating:
		return func(a, b models.Place) int { return cmp.Compare(a.Rating, b.Rating) }
	case SortCategory:
		return func(a, b models.Place) int { return compareFold(a.Category, b.Category) }
	case SortLocation:
		return func(a, b models.Place) int { return compareFold(a.Location, b.Location) }
	case SortPriceLevel:
		return func(a, b models.Place) int { return cmp.Compare(a.PriceLevel, b.PriceLevel) }
	case SortStatus:
		return func(a, b models.Place) int { return compareFold(a.Status, b.Status) }
	default:
		return nil
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Paginate slices list into pages of size. A size of 0 returns everything
// as a single page; a page beyond the last returns no items.
func Paginate(list []models.Place, page, size int) Page {
	if page < 1 {
		page = 1
	}
	total := len(list)

	if size <= 0 {
		return Page{Items: list, Total: total, Page: 1, Pages: 1}
	}

	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}

	start := (page - 1) * size
	if start >= total {
		return Page{Items: []models.Place{}, Total: total, Page: page, Pages: pages}
	}
	end := min(start+size, total)
	return Page{Items: list[start:end], Total: total, Page: page, Pages: pages}
}
