// Package nav models in-app navigation: the current location, redirects that
// carry the originally requested location, and replaying it after login.
package nav

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// Location is a position in the application's route space
type Location struct {
	Path     string
	RawQuery string
	// From is the location a redirect was triggered from, if any
	From *Location
}

// Parse splits "path?query" into a Location. An empty path becomes "/".
func Parse(raw string) Location {
	path, query, _ := strings.Cut(raw, "?")
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Location{Path: path, RawQuery: query}
}

// String renders the location as path?query
func (l Location) String() string {
	if l.RawQuery == "" {
		return l.Path
	}
	return l.Path + "?" + l.RawQuery
}

// Options is the resolved form of a Navigate call's options
type Options struct {
	Replace bool
	From    *Location
}

// Option customizes a navigation
type Option func(*Options)

// Replace replaces the current history entry instead of pushing a new one
func Replace() Option {
	return func(o *Options) {
		o.Replace = true
	}
}

// From carries the originally requested location along with the navigation
func From(loc Location) Option {
	return func(o *Options) {
		l := loc
		l.From = nil
		o.From = &l
	}
}

// Apply resolves opts. Navigator implementations outside this package use it.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Navigator is the navigation surface guards and the session manager consume
type Navigator interface {
	Location() Location
	Navigate(to string, opts ...Option)
}

// ReturnTo is the location the login flow should send the user to after a
// successful login: the location carried in From, or fallback. Only
// in-app absolute paths are honored.
func ReturnTo(loc Location, fallback string) string {
	if loc.From == nil || !IsLocalPath(loc.From.String()) {
		return fallback
	}
	return loc.From.String()
}

// IsLocalPath reports whether p is an absolute in-app path
// ("/profile", not "//evil.example" or "https://...").
// Control characters are rejected: browsers drop tab, CR and LF from
// URLs, which turns "/\t/evil.example" into a host-relative URL.
func IsLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < 0x20 || p[i] == 0x7f {
			return false
		}
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// History is an in-memory Navigator with a browser-like entry stack
type History struct {
	mu      sync.RWMutex
	entries []Location
}

// NewHistory starts a history at the given location
func NewHistory(start string) *History {
	return &History{entries: []Location{Parse(start)}}
}

// Location returns the current entry
func (h *History) Location() Location {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[len(h.entries)-1]
}

// Navigate pushes (or replaces) the current entry
func (h *History) Navigate(to string, opts ...Option) {
	o := Apply(opts...)
	loc := Parse(to)
	loc.From = o.From

	h.mu.Lock()
	defer h.mu.Unlock()
	if o.Replace {
		h.entries[len(h.entries)-1] = loc
		return
	}
	h.entries = append(h.entries, loc)
}

// Back pops the current entry. It reports false at the first entry.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) <= 1 {
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return true
}

// Entries returns a copy of the history stack, oldest first
func (h *History) Entries() []Location {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Location, len(h.entries))
	copy(out, h.entries)
	return out
}

type navigatorKey struct{}

// WithNavigator scopes a navigator to ctx. The web UI installs a per-request
// navigator this way so a logout inside a handler redirects that response.
func WithNavigator(ctx context.Context, n Navigator) context.Context {
	return context.WithValue(ctx, navigatorKey{}, n)
}

// FromContext returns the navigator scoped to ctx, if any
func FromContext(ctx context.Context) (Navigator, bool) {
	if ctx == nil {
		return nil, false
	}
	n, ok := ctx.Value(navigatorKey{}).(Navigator)
	return n, ok && n != nil
}
