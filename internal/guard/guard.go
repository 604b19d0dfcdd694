// Package guard decides whether a location may be shown given the current
// auth session.
package guard

import (
	"github.com/travelease-dev/travelease/internal/authsession"
	"github.com/travelease-dev/travelease/internal/nav"
)

const (
	// LoginPath receives anonymous visitors of authenticated-only locations
	LoginPath = "/login"
	// HomePath receives non-admin visitors of admin-only locations
	HomePath = "/"
)

// Outcome is the result of evaluating a guard
type Outcome int

const (
	// Pending means the session is still loading and no decision can be made
	// yet. Callers show a loading placeholder and re-evaluate later.
	Pending Outcome = iota
	Allow
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is a guard verdict. To and From are set for Redirect only; From is
// the location the visitor attempted.
type Decision struct {
	Outcome Outcome
	To      string
	From    nav.Location
}

// Source exposes the session view guards read. *authsession.Manager
// satisfies it.
type Source interface {
	Snapshot() authsession.Snapshot
}

// Guard evaluates access to a location
type Guard func(loc nav.Location) Decision

// Public allows every visitor
func Public() Guard {
	return func(nav.Location) Decision {
		return Decision{Outcome: Allow}
	}
}

// RequireAuth admits authenticated users. Anonymous visitors are sent to the
// login view carrying the attempted location so login can return them there.
func RequireAuth(src Source) Guard {
	mustSource(src, "RequireAuth")
	return func(loc nav.Location) Decision {
		snap := src.Snapshot()
		switch {
		case !snap.Settled():
			return Decision{Outcome: Pending}
		case !snap.Authenticated():
			return redirect(LoginPath, loc)
		default:
			return Decision{Outcome: Allow}
		}
	}
}

// RequireAdmin admits users with the admin role. Anyone else, signed in or
// not, is sent home.
func RequireAdmin(src Source) Guard {
	mustSource(src, "RequireAdmin")
	return func(loc nav.Location) Decision {
		snap := src.Snapshot()
		switch {
		case !snap.Settled():
			return Decision{Outcome: Pending}
		case !snap.IsAdmin():
			return redirect(HomePath, loc)
		default:
			return Decision{Outcome: Allow}
		}
	}
}

func mustSource(src Source, name string) {
	if m, ok := src.(*authsession.Manager); src == nil || (ok && m == nil) {
		panic("guard: " + name + " used without a session source")
	}
}

func redirect(to string, from nav.Location) Decision {
	from.From = nil
	return Decision{Outcome: Redirect, To: to, From: from}
}
