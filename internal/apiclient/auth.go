package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/travelease-dev/travelease/internal/models"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Message string       `json:"message,omitempty"`
}

// RegisterRequest represents the registration body. Profile carries any
// additional fields the backend accepts; they are sent at the top level.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Profile  map[string]any
}

// MarshalJSON flattens Profile next to the required fields
func (r RegisterRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(r.Profile)+3)
	for k, v := range r.Profile {
		body[k] = v
	}
	body["name"] = r.Name
	body["email"] = r.Email
	body["password"] = r.Password
	return json.Marshal(body)
}

// RegisterResponse is the full registration payload: the token and user
// plus whatever else the backend returned, kept in Raw.
type RegisterResponse struct {
	Token   string
	User    *models.User
	Message string
	Raw     map[string]json.RawMessage
}

// UnmarshalJSON decodes the known fields and keeps the whole document
func (r *RegisterResponse) UnmarshalJSON(data []byte) error {
	var known struct {
		Token   string       `json:"token"`
		User    *models.User `json:"user"`
		Message string       `json:"message"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Token = known.Token
	r.User = known.User
	r.Message = known.Message
	r.Raw = raw
	return nil
}

// MarshalJSON writes the payload back out as received
func (r RegisterResponse) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return json.Marshal(r.Raw)
	}
	return json.Marshal(LoginResponse{Token: r.Token, User: r.User, Message: r.Message})
}

// ErrIncompleteAuthResponse is returned when a 2xx auth response lacks the
// token or the user
var ErrIncompleteAuthResponse = errors.New("response is missing token or user")

// Me returns the user the current session token belongs to
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, http.MethodGet, "/api/user/me", nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, &NetworkError{
			Op:  "decode response",
			URL: c.baseURL + "/api/user/me",
			Err: errors.New("user has no id"),
		}
	}
	return &user, nil
}

// Login authenticates the user and returns the issued token and profile
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("login: %w", ErrIncompleteAuthResponse)
	}
	return &resp, nil
}

// Register creates an account and returns the full response payload
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("register: %w", ErrIncompleteAuthResponse)
	}
	return &resp, nil
}
