package authsession

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelease-dev/travelease/internal/apiclient"
	"github.com/travelease-dev/travelease/internal/models"
	"github.com/travelease-dev/travelease/internal/nav"
	"github.com/travelease-dev/travelease/internal/session"
)

// mockAPI simulates the request client for testing
type mockAPI struct {
	meCalls       atomic.Int32
	loginCalls    atomic.Int32
	registerCalls atomic.Int32

	meUser  *models.User
	meErr   error
	meGate  chan struct{} // when set, Me blocks until it is closed

	mu      sync.Mutex
	ctxSeen context.Context

	email    string
	password string
	token    string
	user     *models.User
	loginErr error

	registerResp *apiclient.RegisterResponse
	registerErr  error
}

func (m *mockAPI) Me(ctx context.Context) (*models.User, error) {
	m.meCalls.Add(1)
	if m.meGate != nil {
		<-m.meGate
	}
	if m.meErr != nil {
		return nil, m.meErr
	}
	return m.meUser.Clone(), nil
}

func (m *mockAPI) Login(ctx context.Context, req apiclient.LoginRequest) (*apiclient.LoginResponse, error) {
	m.loginCalls.Add(1)
	m.mu.Lock()
	m.ctxSeen = ctx
	m.mu.Unlock()
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	if req.Email != m.email || req.Password != m.password {
		return nil, &apiclient.HTTPStatusError{
			Code: http.StatusUnauthorized,
			Body: []byte(`{"message":"Invalid email or password"}`),
		}
	}
	return &apiclient.LoginResponse{Token: m.token, User: m.user.Clone()}, nil
}

func (m *mockAPI) Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.RegisterResponse, error) {
	m.registerCalls.Add(1)
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.registerResp, nil
}

func newStore(t *testing.T, token string) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryKV())
	if token != "" {
		require.NoError(t, store.SetToken(token))
	}
	return store
}

func validAPI() *mockAPI {
	return &mockAPI{
		email:    "jo@example.com",
		password: "secret1",
		token:    "jwt-token-abc",
		user:     &models.User{ID: "1", Name: "Jo", Email: "jo@example.com", Role: models.RoleUser},
	}
}

func TestStart_NoTokenSettlesAnonymousWithoutNetwork(t *testing.T) {
	api := validAPI()
	m := New(newStore(t, ""), api)

	assert.Equal(t, StateLoading, m.State())
	m.Start(context.Background())

	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.CurrentUser())
	assert.Zero(t, api.meCalls.Load())

	select {
	case <-m.Ready():
	default:
		t.Fatal("expected Ready to be closed after Start")
	}
}

func TestStart_ValidTokenAuthenticates(t *testing.T) {
	api := validAPI()
	api.meUser = &models.User{ID: "1", Name: "Jo", Role: models.RoleUser}
	store := newStore(t, "abc123")
	m := New(store, api)

	m.Start(context.Background())

	assert.Equal(t, StateAuthenticated, m.State())
	require.NotNil(t, m.CurrentUser())
	assert.Equal(t, "Jo", m.CurrentUser().Name)
	assert.False(t, m.IsAdmin())

	token, err := store.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestStart_RejectedTokenIsPurged(t *testing.T) {
	for name, meErr := range map[string]error{
		"unauthorized": &apiclient.HTTPStatusError{Code: http.StatusUnauthorized},
		"server error": &apiclient.HTTPStatusError{Code: http.StatusInternalServerError},
		"network":      &apiclient.NetworkError{Op: "send request", URL: "http://x", Err: errors.New("refused")},
	} {
		t.Run(name, func(t *testing.T) {
			api := validAPI()
			api.meErr = meErr
			store := newStore(t, "expired")
			m := New(store, api)

			m.Start(context.Background())

			assert.Equal(t, StateAnonymous, m.State())
			assert.Nil(t, m.CurrentUser())
			assert.Empty(t, m.Err(), "startup failures are silent")
			_, err := store.GetToken()
			assert.ErrorIs(t, err, session.ErrNoToken)
		})
	}
}

func TestStart_RunsOnce(t *testing.T) {
	api := validAPI()
	api.meUser = &models.User{ID: "1", Role: models.RoleAdmin}
	m := New(newStore(t, "abc123"), api)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Start(context.Background())
		}()
	}
	wg.Wait()
	m.Start(context.Background())

	assert.Equal(t, int32(1), api.meCalls.Load())
	assert.True(t, m.IsAdmin())
}

func TestIsAdmin_FalseWhileLoading(t *testing.T) {
	api := validAPI()
	api.meUser = &models.User{ID: "1", Role: models.RoleAdmin}
	api.meGate = make(chan struct{})
	m := New(newStore(t, "abc123"), api)

	go m.Start(context.Background())

	require.Eventually(t, func() bool { return api.meCalls.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, StateLoading, m.State())
	assert.False(t, m.IsAdmin())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded)

	close(api.meGate)
	require.NoError(t, m.Wait(context.Background()))
	assert.True(t, m.IsAdmin())
}

func TestLogin_ValidCredentials(t *testing.T) {
	api := validAPI()
	store := newStore(t, "")
	m := New(store, api)
	m.Start(context.Background())

	for i := 0; i < 3; i++ {
		user, err := m.Login(context.Background(), "jo@example.com", "secret1", i%2 == 0)
		require.NoError(t, err)
		assert.Equal(t, api.user, user)
		assert.Equal(t, StateAuthenticated, m.State())
		assert.Equal(t, api.user, m.CurrentUser())
	}

	token, err := store.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "jwt-token-abc", token)
	assert.Empty(t, m.Err())
}

func TestLogin_InvalidCredentialsLeaveStateUnchanged(t *testing.T) {
	api := validAPI()
	store := newStore(t, "")
	m := New(store, api)
	m.Start(context.Background())

	_, err := m.Login(context.Background(), "jo@example.com", "wrong", false)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid email or password", authErr.Message)
	assert.Equal(t, "Invalid email or password", m.Err())
	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.CurrentUser())
	_, tokenErr := store.GetToken()
	assert.ErrorIs(t, tokenErr, session.ErrNoToken)

	var statusErr *apiclient.HTTPStatusError
	require.ErrorAs(t, err, &statusErr, "cause stays reachable")
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	api := validAPI()
	store := newStore(t, "")
	m := New(store, api)
	m.Start(context.Background())

	_, err := m.Login(context.Background(), "jo@example.com", "secret1", false)
	require.NoError(t, err)

	_, err = m.Login(context.Background(), "jo@example.com", "wrong", false)
	require.Error(t, err)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "Jo", m.CurrentUser().Name)
}

func TestLogin_NetworkFailureUsesGenericMessage(t *testing.T) {
	api := validAPI()
	api.loginErr = &apiclient.NetworkError{Op: "send request", URL: "http://x", Err: errors.New("refused")}
	m := New(newStore(t, ""), api)
	m.Start(context.Background())

	_, err := m.Login(context.Background(), "jo@example.com", "secret1", false)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Failed to login", authErr.Message)

	var netErr *apiclient.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestLogin_ClearsPreviousError(t *testing.T) {
	api := validAPI()
	m := New(newStore(t, ""), api)
	m.Start(context.Background())

	_, _ = m.Login(context.Background(), "jo@example.com", "wrong", false)
	require.NotEmpty(t, m.Err())

	_, err := m.Login(context.Background(), "jo@example.com", "secret1", false)
	require.NoError(t, err)
	assert.Empty(t, m.Err())
}

func TestLogin_NotCancelledByContext(t *testing.T) {
	api := validAPI()
	m := New(newStore(t, ""), api)
	m.Start(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Login(ctx, "jo@example.com", "secret1", false)
	require.NoError(t, err)
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.NoError(t, api.ctxSeen.Err())
}

// failingKV refuses writes
type failingKV struct {
	*session.MemoryKV
}

func (f failingKV) Set(key, value string) error {
	return errors.New("keychain locked")
}

func TestLogin_StoreFailureIsAuthError(t *testing.T) {
	api := validAPI()
	m := New(session.NewStore(failingKV{session.NewMemoryKV()}), api)
	m.Start(context.Background())

	_, err := m.Login(context.Background(), "jo@example.com", "secret1", false)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Failed to save session", authErr.Message)
	assert.Equal(t, StateAnonymous, m.State(), "no token stored means never authenticated")
}

func TestRegister_SuccessReturnsFullPayload(t *testing.T) {
	api := validAPI()
	api.registerResp = &apiclient.RegisterResponse{
		Token:   "t-new",
		User:    &models.User{ID: "2", Name: "Ana", Email: "ana@example.com", Role: models.RoleUser},
		Message: "Registration successful",
	}
	store := newStore(t, "")
	m := New(store, api)
	m.Start(context.Background())

	resp, err := m.Register(context.Background(), apiclient.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Same(t, api.registerResp, resp)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "Ana", m.CurrentUser().Name)
	token, err := store.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "t-new", token)
}

func TestRegister_FailureIsAuthError(t *testing.T) {
	api := validAPI()
	api.registerErr = &apiclient.HTTPStatusError{Code: http.StatusBadRequest, Body: []byte(`{"error":"Email already registered"}`)}
	m := New(newStore(t, ""), api)
	m.Start(context.Background())

	_, err := m.Register(context.Background(), apiclient.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Email already registered", authErr.Message)
	assert.Equal(t, StateAnonymous, m.State())

	api.registerErr = errors.New("boom")
	_, err = m.Register(context.Background(), apiclient.RegisterRequest{})
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Failed to register", authErr.Message)
}

func TestRegister_IncompleteResponse(t *testing.T) {
	api := validAPI()
	api.registerResp = &apiclient.RegisterResponse{Message: "queued for approval"}
	m := New(newStore(t, ""), api)
	m.Start(context.Background())

	_, err := m.Register(context.Background(), apiclient.RegisterRequest{})
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Failed to register", authErr.Message)
	assert.Equal(t, StateAnonymous, m.State())
}

func TestLogout_AlwaysEndsAnonymous(t *testing.T) {
	cases := map[string]func(t *testing.T, m *Manager){
		"from loading": func(t *testing.T, m *Manager) {},
		"from anonymous": func(t *testing.T, m *Manager) {
			m.Start(context.Background())
		},
		"from authenticated": func(t *testing.T, m *Manager) {
			m.Start(context.Background())
			_, err := m.Login(context.Background(), "jo@example.com", "secret1", false)
			require.NoError(t, err)
		},
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			store := newStore(t, "")
			history := nav.NewHistory("/profile")
			m := New(store, validAPI(), WithNavigator(history))
			setup(t, m)

			m.Logout(context.Background())
			once := m.Snapshot()

			m.Logout(context.Background())
			twice := m.Snapshot()

			for _, snap := range []Snapshot{once, twice} {
				assert.Equal(t, StateAnonymous, snap.State)
				assert.Nil(t, snap.User)
			}
			_, err := store.GetToken()
			assert.ErrorIs(t, err, session.ErrNoToken)
			assert.Equal(t, "/login", history.Location().Path)
		})
	}
}

func TestLogout_PrefersContextNavigator(t *testing.T) {
	fallback := nav.NewHistory("/")
	scoped := nav.NewHistory("/admin")
	m := New(newStore(t, "abc123"), validAPI(), WithNavigator(fallback), WithLoginPath("/signin"))

	m.Logout(nav.WithNavigator(context.Background(), scoped))

	assert.Equal(t, "/signin", scoped.Location().Path)
	assert.Len(t, fallback.Entries(), 1, "fallback navigator untouched")
}

func TestLoginDuringStartupValidationWins(t *testing.T) {
	api := validAPI()
	api.meErr = &apiclient.HTTPStatusError{Code: http.StatusUnauthorized}
	api.meGate = make(chan struct{})
	store := newStore(t, "stale")
	m := New(store, api)

	go m.Start(context.Background())
	require.Eventually(t, func() bool { return api.meCalls.Load() == 1 }, time.Second, time.Millisecond)

	_, err := m.Login(context.Background(), "jo@example.com", "secret1", false)
	require.NoError(t, err)

	close(api.meGate)
	require.NoError(t, m.Wait(context.Background()))

	assert.Equal(t, StateAuthenticated, m.State())
	token, err := store.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "jwt-token-abc", token, "stale validation must not purge the fresh token")
}

func TestConcurrentLoginLogoutKeepsInvariant(t *testing.T) {
	api := validAPI()
	store := newStore(t, "")
	m := New(store, api)
	m.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = m.Login(context.Background(), "jo@example.com", "secret1", false)
		}()
		go func() {
			defer wg.Done()
			m.Logout(context.Background())
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	_, err := store.GetToken()
	if snap.State == StateAuthenticated {
		assert.NoError(t, err)
	} else {
		assert.Equal(t, StateAnonymous, snap.State)
		assert.ErrorIs(t, err, session.ErrNoToken)
	}
}

func TestNew_PanicsWithoutDependencies(t *testing.T) {
	assert.Panics(t, func() { New(nil, validAPI()) })
	assert.Panics(t, func() { New(newStore(t, ""), nil) })
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "anonymous", StateAnonymous.String())
	assert.Equal(t, "unknown", State(42).String())
}
