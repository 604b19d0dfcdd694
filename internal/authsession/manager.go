// Package authsession owns the device's authentication state: startup
// validation of a stored token, login, registration and logout.
//
// A Manager is created once at application start and passed to everything
// that needs the current user (guards, views). Concurrent Login and Logout
// calls are last-writer-wins; callers are expected to disable resubmission
// while a request is in flight.
package authsession

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/travelease-dev/travelease/internal/apiclient"
	"github.com/travelease-dev/travelease/internal/models"
	"github.com/travelease-dev/travelease/internal/nav"
	"github.com/travelease-dev/travelease/internal/session"
)

// DefaultLoginPath is where Logout navigates to
const DefaultLoginPath = "/login"

// API is the subset of the request client the manager calls
type API interface {
	Me(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, req apiclient.LoginRequest) (*apiclient.LoginResponse, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.RegisterResponse, error)
}

// TokenStore is the session token persistence the manager owns
type TokenStore interface {
	GetToken() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// Manager is the auth session state machine
type Manager struct {
	store     TokenStore
	api       API
	navigator nav.Navigator
	loginPath string
	logger    zerolog.Logger

	mu      sync.RWMutex
	state   State
	user    *models.User
	lastErr string

	startOnce sync.Once
	ready     chan struct{}
}

// Option customizes a Manager
type Option func(*Manager)

// WithNavigator sets the navigator Logout uses when the call's context does
// not carry one
func WithNavigator(n nav.Navigator) Option {
	return func(m *Manager) {
		m.navigator = n
	}
}

// WithLogger sets the manager's logger
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = log
	}
}

// WithLoginPath overrides the location Logout navigates to
func WithLoginPath(p string) Option {
	return func(m *Manager) {
		if p != "" {
			m.loginPath = p
		}
	}
}

// New creates a manager in the loading state. Call Start to run startup
// validation.
func New(store TokenStore, api API, opts ...Option) *Manager {
	if store == nil || api == nil {
		panic("authsession: New requires a token store and an API client")
	}

	m := &Manager{
		store:     store,
		api:       api,
		loginPath: DefaultLoginPath,
		logger:    zerolog.Nop(),
		state:     StateLoading,
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start validates the stored token against the backend. It runs at most once
// per manager; later calls return immediately. Start blocks until validation
// settles, so callers that must not block run it in a goroutine and use
// Ready or Wait.
//
// With no stored token the session settles as anonymous without a network
// call. A token the backend rejects (for any reason, network failures
// included) is purged. Failures are logged, never returned.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		defer close(m.ready)
		m.validate(context.WithoutCancel(ctx))
	})
}

// Ready is closed once startup validation has settled
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Wait blocks until startup validation settles or ctx is done
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) validate(ctx context.Context) {
	if _, err := m.store.GetToken(); err != nil {
		if !errors.Is(err, session.ErrNoToken) {
			m.logger.Warn().Err(err).Msg("Failed to read session token, starting anonymous")
		}
		m.settleStartup(nil, false)
		return
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		m.logger.Info().Err(err).Msg("Stored session is no longer valid")
		m.settleStartup(nil, true)
		return
	}

	m.settleStartup(user, false)
}

// settleStartup applies the startup validation outcome unless a login or
// logout already settled the session while validation was in flight
func (m *Manager) settleStartup(user *models.User, purge bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateLoading {
		m.logger.Debug().
			Str("state", m.state.String()).
			Msg("Session settled during startup validation, discarding result")
		return
	}

	if purge {
		if err := m.store.ClearToken(); err != nil {
			m.logger.Error().Err(err).Msg("Failed to purge invalid session token")
		}
	}

	if user != nil {
		m.transitionLocked(StateAuthenticated, user.Clone())
		return
	}
	m.transitionLocked(StateAnonymous, nil)
}

// Login exchanges credentials for a session token. On success the token is
// stored, the returned user becomes the current user and the state is
// authenticated. On failure the state is unchanged and the error is an
// *AuthError. rememberMe is forwarded to the backend as a hint only.
//
// The request is not cancelled when ctx is: once sent, a login runs to
// completion.
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) (*models.User, error) {
	m.setErr("")

	resp, err := m.api.Login(context.WithoutCancel(ctx), apiclient.LoginRequest{
		Email:      email,
		Password:   password,
		RememberMe: rememberMe,
	})
	if err != nil {
		return nil, m.fail(err, msgLoginFailed, "Login failed")
	}

	if err := m.establish(resp.Token, resp.User); err != nil {
		return nil, m.fail(err, establishFallback(err, msgLoginFailed), "Login failed")
	}

	m.logger.Info().Str("user_id", string(resp.User.ID)).Msg("User logged in")
	return resp.User.Clone(), nil
}

// Register creates an account. On success it behaves like Login and returns
// the full response payload; on failure the state is unchanged and the error
// is an *AuthError.
func (m *Manager) Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.RegisterResponse, error) {
	m.setErr("")

	resp, err := m.api.Register(context.WithoutCancel(ctx), req)
	if err != nil {
		return nil, m.fail(err, msgRegisterFailed, "Registration failed")
	}

	if err := m.establish(resp.Token, resp.User); err != nil {
		return nil, m.fail(err, establishFallback(err, msgRegisterFailed), "Registration failed")
	}

	m.logger.Info().Str("user_id", string(resp.User.ID)).Msg("User registered")
	return resp, nil
}

// establish stores the token and sets the current user in one critical
// section, so a stored token and the authenticated state never diverge
func (m *Manager) establish(token string, user *models.User) error {
	if token == "" || user == nil {
		return apiclient.ErrIncompleteAuthResponse
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SetToken(token); err != nil {
		return err
	}
	m.transitionLocked(StateAuthenticated, user.Clone())
	return nil
}

func establishFallback(err error, requestFallback string) string {
	if errors.Is(err, apiclient.ErrIncompleteAuthResponse) {
		return requestFallback
	}
	return msgSaveFailed
}

func (m *Manager) fail(err error, fallback, logMsg string) *AuthError {
	authErr := normalizeAuthError(err, fallback)
	m.setErr(authErr.Message)
	m.logger.Warn().Err(err).Str("message", authErr.Message).Msg(logMsg)
	return authErr
}

// Logout purges the token, clears the current user and navigates to the
// login view. It needs no network round-trip and always succeeds locally.
// The navigator scoped to ctx (nav.WithNavigator) wins over the manager's.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if err := m.store.ClearToken(); err != nil {
		m.logger.Error().Err(err).Msg("Failed to delete session token")
	}
	m.transitionLocked(StateAnonymous, nil)
	m.mu.Unlock()

	navigator, ok := nav.FromContext(ctx)
	if !ok {
		navigator = m.navigator
	}
	if navigator != nil {
		navigator.Navigate(m.loginPath)
	}
}

func (m *Manager) transitionLocked(to State, user *models.User) {
	from := m.state
	m.state = to
	m.user = user
	if from != to {
		m.logger.Debug().Str("from", from.String()).Str("to", to.String()).Msg("Session state changed")
	}
}

// State returns the current auth state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentUser returns a copy of the current user, or nil
func (m *Manager) CurrentUser() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

// Snapshot returns the state and user read together
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, User: m.user.Clone()}
}

// IsAdmin reports whether the current user holds the admin role. It never
// blocks and is false while loading.
func (m *Manager) IsAdmin() bool {
	return m.Snapshot().IsAdmin()
}

// Err returns the message of the last failed login or registration. It is
// cleared when a new attempt starts.
func (m *Manager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setErr(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}
