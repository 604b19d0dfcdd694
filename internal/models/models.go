package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role is the access level the backend assigns to a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserID holds a user identifier. The backend emits hex object IDs as strings,
// older fixtures emit plain numbers; both decode into the same string form.
type UserID string

// UnmarshalJSON accepts a JSON string or a JSON number
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		*id = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// User is the locally cached profile of the signed-in account
type User struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Clone returns a copy that callers may keep without sharing state
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Place is a destination as served by the places API
type Place struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Category    string   `json:"category"` // attractions, hotels, restaurants, nature, shopping
	ImageURL    string   `json:"imageUrl"`
	Rating      float64  `json:"rating"`
	PriceLevel  int      `json:"priceLevel"` // 0 (free) to 5
	Tags        []string `json:"tags"`
	Status      string   `json:"status,omitempty"` // active, pending, inactive (admin listing only)
}

// UnmarshalJSON keeps numeric place IDs from fixtures readable as strings
func (p *Place) UnmarshalJSON(data []byte) error {
	type alias Place
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var id UserID
	if len(aux.ID) > 0 {
		if err := id.UnmarshalJSON(aux.ID); err != nil {
			return fmt.Errorf("invalid place id: %w", err)
		}
	}
	p.ID = string(id)
	return nil
}

// HasTag reports whether the place carries the tag, ignoring case
func (p Place) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Transport modes the route finder accepts
const (
	ModeDriving = "driving"
	ModeWalking = "walking"
	ModeCycling = "cycling"
	ModeTransit = "transit"
)

// RoutePoint is one waypoint of a found route
type RoutePoint struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// TravelRoute is the route finder's answer for an origin and destination
type TravelRoute struct {
	Origin      string       `json:"origin"`
	Destination string       `json:"destination"`
	Mode        string       `json:"mode"`
	Points      []RoutePoint `json:"route"`
	Distance    float64      `json:"distance"` // kilometers
	Duration    int          `json:"duration"` // minutes
	Cost        float64      `json:"cost"`
}

// SessionEntry is one row of the sqlite-backed session key/value table
type SessionEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name so it survives struct renames
func (SessionEntry) TableName() string {
	return "session_entries"
}

// AutoMigrate runs database migrations for all persisted models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&SessionEntry{},
	}

	return db.AutoMigrate(models...)
}
