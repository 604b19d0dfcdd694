package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Validate(t *testing.T) {
	tests := []struct {
		name string
		form Login
		want string
	}{
		{"valid", Login{Email: " jo@example.com ", Password: "x"}, ""},
		{"missing email", Login{Password: "secret1"}, MsgLoginRequired},
		{"missing password", Login{Email: "jo@example.com"}, MsgLoginRequired},
		{"malformed email", Login{Email: "jo", Password: "secret1"}, MsgInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.want == "" {
				require.NoError(t, err)
				assert.Equal(t, "jo@example.com", tt.form.Email)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.want, vErr.Message)
		})
	}
}

func TestRegister_Validate(t *testing.T) {
	valid := Register{Name: "Ana", Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret1"}

	tests := []struct {
		name   string
		modify func(f *Register)
		want   string
	}{
		{"valid", func(f *Register) {}, ""},
		{"missing name", func(f *Register) { f.Name = "  " }, MsgAllRequired},
		{"missing confirmation", func(f *Register) { f.ConfirmPassword = "" }, MsgAllRequired},
		{"mismatch", func(f *Register) { f.ConfirmPassword = "secret2" }, MsgPasswordMismatch},
		{"too short", func(f *Register) { f.Password, f.ConfirmPassword = "abc", "abc" }, MsgPasswordTooShort},
		{"mismatch reported before length", func(f *Register) { f.Password, f.ConfirmPassword = "abc", "abd" }, MsgPasswordMismatch},
		{"bad email", func(f *Register) { f.Email = "ana@" }, MsgInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.modify(&f)
			err := f.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.want, vErr.Message)
		})
	}
}

func TestRegister_Request(t *testing.T) {
	f := Register{Name: "Ana", Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	req := f.Request()

	assert.Equal(t, "Ana", req.Name)
	assert.Equal(t, "ana@example.com", req.Email)
	assert.Equal(t, "secret1", req.Password)
	assert.Nil(t, req.Profile)
}

func TestRouteSearch_Validate(t *testing.T) {
	tests := []struct {
		name     string
		form     RouteSearch
		want     string
		wantMode string
	}{
		{"defaults to driving", RouteSearch{Origin: " Kyoto ", Destination: "Osaka"}, "", "driving"},
		{"mode is case-insensitive", RouteSearch{Origin: "Kyoto", Destination: "Osaka", Mode: "Transit"}, "", "transit"},
		{"missing destination", RouteSearch{Origin: "Kyoto"}, MsgRouteRequired, ""},
		{"blank origin", RouteSearch{Origin: "  ", Destination: "Osaka"}, MsgRouteRequired, ""},
		{"unknown mode", RouteSearch{Origin: "Kyoto", Destination: "Osaka", Mode: "teleport"}, MsgInvalidMode, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.want == "" {
				require.NoError(t, err)
				assert.Equal(t, "Kyoto", tt.form.Origin)
				assert.Equal(t, tt.wantMode, tt.form.Mode)
				assert.Equal(t, tt.wantMode, tt.form.Request().Mode)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.want, vErr.Message)
		})
	}

	assert.True(t, RouteSearch{Mode: "walking"}.Empty())
	assert.False(t, RouteSearch{Origin: "Kyoto"}.Empty())
}
