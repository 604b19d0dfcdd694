// Package forms validates the login, registration and route search forms
// before they reach the session manager or the backend.
package forms

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/travelease-dev/travelease/internal/apiclient"
	"github.com/travelease-dev/travelease/internal/models"
)

// Messages shown inline on the forms
const (
	MsgLoginRequired    = "Please enter both email and password."
	MsgAllRequired      = "All fields are required."
	MsgInvalidEmail     = "Please enter a valid email address."
	MsgPasswordMismatch = "Passwords do not match."
	MsgPasswordTooShort = "Password must be at least 6 characters long."
	MsgRouteRequired    = "Please enter both origin and destination."
	MsgInvalidMode      = "Please choose a supported travel mode."
)

// MinPasswordLength is the shortest password the register form accepts
const MinPasswordLength = 6

// ValidationError is a form rejected before any request was sent. Message is
// safe to show the user.
type ValidationError struct {
	Message string
	Field   string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Login is the login form
type Login struct {
	Email      string `form:"email" validate:"required,email"`
	Password   string `form:"password" validate:"required"`
	RememberMe bool   `form:"rememberMe"`
	// From is the location to return to after login
	From string `form:"from"`
}

// Validate trims the email and checks the form
func (f *Login) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return check(f, map[string]string{
		"required": MsgLoginRequired,
		"email":    MsgInvalidEmail,
	})
}

// Register is the registration form
type Register struct {
	Name            string `form:"name" validate:"required"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

// Validate trims name and email and checks the form
func (f *Register) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return check(f, map[string]string{
		"required": MsgAllRequired,
		"email":    MsgInvalidEmail,
		"eqfield":  MsgPasswordMismatch,
		"min":      MsgPasswordTooShort,
	})
}

// Request converts the form into the register request body
func (f Register) Request() apiclient.RegisterRequest {
	return apiclient.RegisterRequest{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
	}
}

// RouteSearch is the route finder form
type RouteSearch struct {
	Origin      string `form:"origin" json:"origin" validate:"required"`
	Destination string `form:"destination" json:"destination" validate:"required"`
	Mode        string `form:"mode" json:"mode" validate:"oneof=driving walking cycling transit"`
}

// Empty reports whether nothing has been entered yet
func (f RouteSearch) Empty() bool {
	return strings.TrimSpace(f.Origin) == "" && strings.TrimSpace(f.Destination) == ""
}

// Validate trims the places, defaults the mode to driving and checks the form
func (f *RouteSearch) Validate() error {
	f.Origin = strings.TrimSpace(f.Origin)
	f.Destination = strings.TrimSpace(f.Destination)
	f.Mode = strings.ToLower(strings.TrimSpace(f.Mode))
	if f.Mode == "" {
		f.Mode = models.ModeDriving
	}
	return check(f, map[string]string{
		"required": MsgRouteRequired,
		"oneof":    MsgInvalidMode,
	})
}

// Request converts the form into the route finder request body
func (f RouteSearch) Request() apiclient.RouteRequest {
	return apiclient.RouteRequest{
		Origin:      f.Origin,
		Destination: f.Destination,
		Mode:        f.Mode,
	}
}

// tagPriority orders failures so the most basic problem is reported first
var tagPriority = []string{"required", "email", "eqfield", "min", "oneof"}

func check(form any, messages map[string]string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, tag := range tagPriority {
		for _, fe := range fieldErrs {
			if fe.Tag() != tag {
				continue
			}
			if msg, ok := messages[tag]; ok {
				return &ValidationError{Message: msg, Field: fe.Field(), Err: fe}
			}
		}
	}

	fe := fieldErrs[0]
	return &ValidationError{Message: fe.Error(), Field: fe.Field(), Err: fe}
}
