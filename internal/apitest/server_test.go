package apitest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelease-dev/travelease/internal/models"
)

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getWithToken(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoginAndMe(t *testing.T) {
	srv := New(t)
	srv.AddUser("Jo", "jo@example.com", "secret1", models.RoleUser)

	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]any{"email": "JO@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "Jo", body.User.Name)

	me := getWithToken(t, srv.URL+"/api/user/me", body.Token)
	require.Equal(t, http.StatusOK, me.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(me.Body).Decode(&user))
	assert.Equal(t, body.User, user)

	assert.Equal(t, 1, srv.Calls(EndpointLogin))
	assert.Equal(t, 1, srv.Calls(EndpointMe))
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := New(t)
	srv.AddUser("Jo", "jo@example.com", "secret1", models.RoleUser)

	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]any{"email": "jo@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := New(t)
	body := map[string]any{"name": "Ana", "email": "ana@example.com", "password": "secret1"}

	assert.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/auth/register", body).StatusCode)
	assert.Equal(t, http.StatusBadRequest, postJSON(t, srv.URL+"/api/auth/register", body).StatusCode)
	assert.Equal(t, 2, srv.Calls(EndpointRegister))
}

func TestMe_RejectsBadTokens(t *testing.T) {
	srv := New(t)
	user := srv.AddUser("Jo", "jo@example.com", "secret1", models.RoleUser)

	tests := map[string]string{
		"missing": "",
		"garbage": "not-a-jwt",
		"expired": srv.IssueToken(user, -time.Minute),
		"unknown": srv.IssueToken(models.User{ID: "ffff", Role: models.RoleUser}, time.Hour),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			resp := getWithToken(t, srv.URL+"/api/user/me", token)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestPlaces(t *testing.T) {
	srv := New(t)
	user := srv.AddUser("Jo", "jo@example.com", "secret1", models.RoleUser)
	srv.AddPlace(models.Place{ID: "p1", Name: "Eiffel Tower"})
	token := srv.IssueToken(user, time.Hour)

	resp := getWithToken(t, srv.URL+"/api/places", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Place
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, getWithToken(t, srv.URL+"/api/places/p1", token).StatusCode)
	assert.Equal(t, http.StatusNotFound, getWithToken(t, srv.URL+"/api/places/p2", token).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, getWithToken(t, srv.URL+"/api/places", "").StatusCode)
}

func TestExtractBearerToken(t *testing.T) {
	_, err := extractBearerToken("")
	assert.ErrorIs(t, err, ErrMissingAuthHeader)
	_, err = extractBearerToken("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidAuthFormat)
	_, err = extractBearerToken("Bearer ")
	assert.ErrorIs(t, err, ErrEmptyToken)
	token, err := extractBearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestRoutes(t *testing.T) {
	srv := New(t)
	user := srv.AddUser("Jo", "jo@example.com", "secret1", models.RoleUser)
	srv.AddRoute(models.TravelRoute{
		Origin:      "Kyoto",
		Destination: "Osaka",
		Points:      []models.RoutePoint{{Name: "Kyoto", Lat: 35.01, Lng: 135.77}, {Name: "Osaka", Lat: 34.69, Lng: 135.50}},
		Distance:    56,
		Duration:    55,
		Cost:        12.5,
	})
	token := srv.IssueToken(user, time.Hour)

	find := func(token string, body map[string]any) *http.Response {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/routes/find", bytes.NewReader(data))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	assert.Equal(t, http.StatusUnauthorized, find("", map[string]any{"origin": "Kyoto", "destination": "Osaka"}).StatusCode)
	assert.Equal(t, http.StatusBadRequest, find(token, map[string]any{"origin": "Kyoto"}).StatusCode)
	assert.Equal(t, http.StatusNotFound, find(token, map[string]any{"origin": "Kyoto", "destination": "Osaka", "mode": models.ModeWalking}).StatusCode)

	resp := find(token, map[string]any{"origin": "kyoto", "destination": "OSAKA", "mode": models.ModeDriving})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var route models.TravelRoute
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&route))
	assert.Len(t, route.Points, 2)
	assert.Equal(t, 12.5, route.Cost)
	assert.Equal(t, 4, srv.Calls(EndpointFindRoute))

	est := getWithToken(t, srv.URL+"/api/routes/estimate-cost?origin=Kyoto&destination=Osaka", token)
	require.Equal(t, http.StatusOK, est.StatusCode)
	var estimate struct {
		Cost     float64 `json:"cost"`
		Currency string  `json:"currency"`
	}
	require.NoError(t, json.NewDecoder(est.Body).Decode(&estimate))
	assert.Equal(t, 12.5, estimate.Cost)
	assert.Equal(t, "USD", estimate.Currency)
	assert.Equal(t, 1, srv.Calls(EndpointEstimateCost))
}
