// Package web serves the TravelEase views over HTTP. Every view is guarded
// by the same session guards the CLI uses; guard outcomes map onto HTTP
// responses (pending is 503, redirect is 302).
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/travelease-dev/travelease/internal/apiclient"
	"github.com/travelease-dev/travelease/internal/authsession"
	"github.com/travelease-dev/travelease/internal/config"
	"github.com/travelease-dev/travelease/internal/models"
	"github.com/travelease-dev/travelease/internal/routes"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// BackendAPI is the subset of the request client the views call
type BackendAPI interface {
	ListPlaces(ctx context.Context) ([]models.Place, error)
	GetPlace(ctx context.Context, id string) (*models.Place, error)
	FindRoute(ctx context.Context, req apiclient.RouteRequest) (*models.TravelRoute, error)
}

// Server represents the web UI HTTP server
type Server struct {
	engine  *gin.Engine
	routes  *routes.Router
	manager *authsession.Manager
	api     BackendAPI
	config  config.WebConfig
	logger  zerolog.Logger
	version string
}

// New creates a web UI server. Startup validation of the stored session is
// started by Run; until it settles guarded views answer 503.
func New(manager *authsession.Manager, api BackendAPI, cfg config.WebConfig, zlog zerolog.Logger, version string) (*Server, error) {
	if manager == nil || api == nil {
		return nil, errors.New("web: session manager and backend API are required")
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	s := &Server{
		routes:  routes.New(manager, routes.WithLogger(zlog)),
		manager: manager,
		api:     api,
		config:  cfg,
		logger:  zlog,
		version: version,
	}
	s.setupRouter(tmpl)
	return s, nil
}

// Handler returns the HTTP handler serving the UI
func (s *Server) Handler() http.Handler {
	return s.engine
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter(tmpl *template.Template) {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	s.engine = gin.New()
	s.engine.SetHTMLTemplate(tmpl)

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.loggingMiddleware())

	if len(s.config.AllowedOrigins) > 0 {
		s.engine.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s.engine.GET("/health", s.healthCheck)

	views := map[string]gin.HandlerFunc{
		routes.ViewRouteFinder: s.routeFinderView,
		routes.ViewPlaces:      s.placesView,
		routes.ViewPlaceDetail: s.placeDetailView,
		routes.ViewAdminPlaces: s.adminPlacesView,
		routes.ViewLogin:       s.loginView,
		routes.ViewNotFound:    s.notFoundView,
	}
	for _, route := range s.routes.Routes() {
		handler, ok := views[route.View]
		if !ok {
			handler = s.staticView
		}
		s.engine.GET(route.Pattern, s.guardMiddleware(route), handler)
	}

	s.engine.POST("/login", s.login)
	s.engine.POST("/register", s.register)
	s.engine.POST("/logout", s.logout)

	s.engine.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, routes.NotFoundPath)
	})
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "travelease-web",
		"version":   s.version,
		"session":   s.manager.State(),
	})
}

// Run validates the stored session in the background and serves the UI on
// the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	go s.manager.Start(ctx)

	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("Starting web UI")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Web UI shutdown complete")
	return nil
}
