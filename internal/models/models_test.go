package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_DecodesNumericAndStringIDs(t *testing.T) {
	var numeric User
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Jo","role":"user"}`), &numeric))
	assert.Equal(t, UserID("1"), numeric.ID)
	assert.Equal(t, RoleUser, numeric.Role)

	var hex User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"65a1f0c2","email":"jo@example.com","role":"admin"}`), &hex))
	assert.Equal(t, UserID("65a1f0c2"), hex.ID)
	assert.True(t, hex.IsAdmin())
}

func TestUser_IsAdmin(t *testing.T) {
	var missing *User
	assert.False(t, missing.IsAdmin())
	assert.False(t, (&User{Role: "Admin"}).IsAdmin(), "role comparison is exact")
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

func TestUser_CloneIsIndependent(t *testing.T) {
	u := &User{ID: "1", Name: "Jo"}
	c := u.Clone()
	c.Name = "Changed"
	assert.Equal(t, "Jo", u.Name)

	var missing *User
	assert.Nil(t, missing.Clone())
}

func TestPlace_DecodesNumericID(t *testing.T) {
	var p Place
	err := json.Unmarshal([]byte(`{"id":7,"name":"Bali, Indonesia","rating":4.8,"priceLevel":3,"tags":["Beach"]}`), &p)
	require.NoError(t, err)
	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "Bali, Indonesia", p.Name)
	assert.Equal(t, 3, p.PriceLevel)
	assert.True(t, p.HasTag("beach"))
}
