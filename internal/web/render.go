package web

import (
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/travelease-dev/travelease/internal/authsession"
	"github.com/travelease-dev/travelease/internal/forms"
	"github.com/travelease-dev/travelease/internal/models"
	"github.com/travelease-dev/travelease/internal/routes"
)

const viewLoading = "loading"

// Page is the view-model every view renders. JSON clients receive it as is.
type Page struct {
	View    string              `json:"view"`
	Path    string              `json:"path"`
	State   authsession.State   `json:"state"`
	User    *models.User        `json:"user,omitempty"`
	IsAdmin bool                `json:"isAdmin"`
	Params  routes.Params       `json:"params,omitempty"`
	From    string              `json:"from,omitempty"`
	Error   string              `json:"error,omitempty"`
	Places  []models.Place      `json:"places,omitempty"`
	Place   *models.Place       `json:"place,omitempty"`
	Paging  *Paging             `json:"paging,omitempty"`
	Search  *forms.RouteSearch  `json:"search,omitempty"`
	Route   *models.TravelRoute `json:"route,omitempty"`
	Email   string              `json:"email,omitempty"`
	Version string              `json:"version,omitempty"`
}

// Paging describes the page of a places list being shown
type Paging struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

var templateFuncs = template.FuncMap{
	"title": func(view string) string {
		words := strings.Split(view, "-")
		for i, w := range words {
			if w != "" {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
		return strings.Join(words, " ")
	},
	"modes": func() []string {
		return []string{models.ModeDriving, models.ModeWalking, models.ModeCycling, models.ModeTransit}
	},
}

func (s *Server) newPage(c *gin.Context, view string) Page {
	snap := s.manager.Snapshot()
	return Page{
		View:    view,
		Path:    c.Request.URL.Path,
		State:   snap.State,
		User:    snap.User,
		IsAdmin: snap.IsAdmin(),
		Version: s.version,
	}
}

// render negotiates between the HTML page and its JSON view-model
func (s *Server) render(c *gin.Context, status int, page Page) {
	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: "page.tmpl",
		HTMLData: page,
		JSONData: page,
	})
}
