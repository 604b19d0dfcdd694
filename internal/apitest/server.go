// Package apitest runs an in-process TravelEase backend for tests. It issues
// HS256 tokens, stores bcrypt password hashes and counts calls per endpoint.
package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/travelease-dev/travelease/internal/models"
)

// Endpoint keys for Calls
const (
	EndpointLogin    = "POST /api/auth/login"
	EndpointRegister = "POST /api/auth/register"
	EndpointLogout   = "POST /api/auth/logout"
	EndpointMe       = "GET /api/user/me"
	EndpointPlaces   = "GET /api/places"
	EndpointPlace    = "GET /api/places/:id"

	EndpointFindRoute    = "POST /api/routes/find"
	EndpointEstimateCost = "GET /api/routes/estimate-cost"
)

const bearerPrefix = "Bearer "

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

// Claims are the token claims the fake backend signs
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type account struct {
	user         models.User
	passwordHash string
}

// Server is a fake backend
type Server struct {
	*httptest.Server

	secret []byte

	mu       sync.Mutex
	accounts map[string]*account // by lowercased email
	places   []models.Place
	routes   map[string]models.TravelRoute // by routeKey
	calls    map[string]int
	nextID   int
}

// New starts a fake backend that is closed when the test ends
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:   []byte("apitest-secret-" + strconv.FormatInt(time.Now().UnixNano(), 36)),
		accounts: make(map[string]*account),
		routes:   make(map[string]models.TravelRoute),
		calls:    make(map[string]int),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.countCalls())

	api := r.Group("/api")
	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register)
	api.POST("/auth/logout", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
	})

	protected := api.Group("")
	protected.Use(s.authMiddleware())
	protected.GET("/user/me", s.me)
	protected.GET("/places", s.listPlaces)
	protected.GET("/places/:id", s.getPlace)
	protected.POST("/routes/find", s.findRoute)
	protected.GET("/routes/estimate-cost", s.estimateCost)

	return r
}

func (s *Server) countCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.FullPath()
		s.mu.Lock()
		s.calls[key]++
		s.mu.Unlock()
		c.Next()
	}
}

// Calls returns how many requests an endpoint received
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// AddUser registers an account and returns its public profile
func (s *Server) AddUser(name, email, password string, role models.Role) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("apitest: hash password: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(name, email, string(hash), role)
}

func (s *Server) addLocked(name, email, hash string, role models.Role) models.User {
	s.nextID++
	user := models.User{
		ID:    models.UserID(fmt.Sprintf("%024x", s.nextID)),
		Name:  name,
		Email: email,
		Role:  role,
	}
	s.accounts[strings.ToLower(email)] = &account{user: user, passwordHash: hash}
	return user
}

// AddPlace makes a place available from the places endpoints
func (s *Server) AddPlace(p models.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.places = append(s.places, p)
}

// AddRoute makes a route available from the route finder endpoints. An empty
// mode means driving.
func (s *Server) AddRoute(r models.TravelRoute) {
	if r.Mode == "" {
		r.Mode = models.ModeDriving
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[routeKey(r.Origin, r.Destination, r.Mode)] = r
}

func routeKey(origin, destination, mode string) string {
	if mode == "" {
		mode = models.ModeDriving
	}
	return strings.ToLower(strings.TrimSpace(origin)) + "|" +
		strings.ToLower(strings.TrimSpace(destination)) + "|" + mode
}

func (s *Server) lookupRoute(origin, destination, mode string) (models.TravelRoute, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[routeKey(origin, destination, mode)]
	return r, ok
}

// IssueToken signs a token for user, valid for ttl (negative for an
// already expired token)
func (s *Server) IssueToken(user models.User, ttl time.Duration) string {
	now := time.Now()
	claims := Claims{
		UserID: string(user.ID),
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return token
}

func (s *Server) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims, err := s.validateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, ok := s.userByID(claims.UserID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

func (s *Server) userByID(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if string(acc.user.ID) == id {
			return acc.user, true
		}
	}
	return models.User{}, false
}

type loginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	ttl := 24 * time.Hour
	if req.RememberMe {
		ttl = 30 * 24 * time.Hour
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    acc.user,
		"token":   s.IssueToken(acc.user, ttl),
	})
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[strings.ToLower(req.Email)]; exists {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
		return
	}
	user := s.addLocked(req.Name, req.Email, string(hash), models.RoleUser)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message": "Registration successful",
		"user":    user,
		"token":   s.IssueToken(user, 24*time.Hour),
	})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet("user"))
}

func (s *Server) listPlaces(c *gin.Context) {
	s.mu.Lock()
	list := append([]models.Place{}, s.places...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, list)
}

func (s *Server) getPlace(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.places {
		if p.ID == id {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
}

type routeRequest struct {
	Origin      string `json:"origin" form:"origin" binding:"required"`
	Destination string `json:"destination" form:"destination" binding:"required"`
	Mode        string `json:"mode" form:"mode"`
}

func (s *Server) findRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Origin and destination are required"})
		return
	}

	route, ok := s.lookupRoute(req.Origin, req.Destination, req.Mode)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "No route found"})
		return
	}
	c.JSON(http.StatusOK, route)
}

func (s *Server) estimateCost(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Origin and destination are required"})
		return
	}

	route, ok := s.lookupRoute(req.Origin, req.Destination, req.Mode)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "No route found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cost": route.Cost, "currency": "USD"})
}
