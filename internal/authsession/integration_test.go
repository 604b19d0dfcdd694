package authsession

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelease-dev/travelease/internal/apiclient"
	"github.com/travelease-dev/travelease/internal/apitest"
	"github.com/travelease-dev/travelease/internal/models"
	"github.com/travelease-dev/travelease/internal/session"
)

func newBackedManager(t *testing.T, srv *apitest.Server, token string) (*Manager, *session.Store) {
	t.Helper()
	store := newStore(t, token)
	client := apiclient.New(srv.URL, store)
	return New(store, client), store
}

func TestBackend_LoginThenRestart(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("Ada", "ada@example.com", "secret1", models.RoleAdmin)

	m, store := newBackedManager(t, srv, "")
	m.Start(context.Background())
	assert.Zero(t, srv.Calls(apitest.EndpointMe))

	user, err := m.Login(context.Background(), "ada@example.com", "secret1", true)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.True(t, m.IsAdmin())

	token, err := store.GetToken()
	require.NoError(t, err)

	restarted, _ := newBackedManager(t, srv, token)
	restarted.Start(context.Background())
	assert.Equal(t, StateAuthenticated, restarted.State())
	assert.True(t, restarted.IsAdmin())
	assert.Equal(t, 1, srv.Calls(apitest.EndpointMe))
}

func TestBackend_ExpiredTokenPurged(t *testing.T) {
	srv := apitest.New(t)
	user := srv.AddUser("Jo", "jo@example.com", "secret1", models.RoleUser)

	m, store := newBackedManager(t, srv, srv.IssueToken(user, -time.Hour))
	m.Start(context.Background())

	assert.Equal(t, StateAnonymous, m.State())
	_, err := store.GetToken()
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestBackend_ServerMessageSurfaces(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("Jo", "jo@example.com", "secret1", models.RoleUser)

	m, _ := newBackedManager(t, srv, "")
	m.Start(context.Background())

	_, err := m.Login(context.Background(), "jo@example.com", "wrong", false)
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	_, err = m.Register(context.Background(), apiclient.RegisterRequest{Name: "Jo", Email: "jo@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", err.Error())
	assert.Equal(t, StateAnonymous, m.State())
}

func TestBackend_RegisterSignsIn(t *testing.T) {
	srv := apitest.New(t)
	m, _ := newBackedManager(t, srv, "")
	m.Start(context.Background())

	resp, err := m.Register(context.Background(), apiclient.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret1",
		Profile:  map[string]any{"homeCity": "Lisbon"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Registration successful", resp.Message)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.False(t, m.IsAdmin())
}
