// Package guard decides which screen a navigation request actually lands on.
package guard

import (
	"context"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

type Screen string

// Login doubles as the root screen.
const (
	Login    Screen = "login"
	Signup   Screen = "signup"
	Admin    Screen = "admin"
	Products Screen = "products"
	Cart     Screen = "cart"
	Invoice  Screen = "invoice"
)

func (s Screen) Known() bool {
	switch s {
	case Login, Signup, Admin, Products, Cart, Invoice:
		return true
	}

	return false
}

type State struct {
	Authenticated bool
	Role          models.Role
}

type Decision struct {
	Requested Screen
	Target    Screen
}

func (d Decision) Allowed() bool {
	return d.Requested == d.Target
}

// Home is where an authenticated user with role lands.
func Home(role models.Role) Screen {
	if role == models.RoleAdministrator {
		return Admin
	}

	return Products
}

// Evaluate is pure: the same target and state always give the same decision.
func Evaluate(target Screen, state State) Decision {
	d := Decision{Requested: target}

	if !target.Known() {
		target = Login
	}

	switch target {
	case Signup:
		d.Target = Signup
	case Login:
		if state.Authenticated {
			d.Target = Home(state.Role)
		} else {
			d.Target = Login
		}
	case Admin:
		switch {
		case !state.Authenticated:
			d.Target = Login
		case state.Role != models.RoleAdministrator:
			d.Target = Products
		default:
			d.Target = Admin
		}
	default:
		if state.Authenticated {
			d.Target = target
		} else {
			d.Target = Login
		}
	}

	return d
}

type SessionQuerier interface {
	HasToken(ctx context.Context) (bool, error)
	Role(ctx context.Context) (models.Role, error)
}

// Guard re-reads session state on every check; decisions are never cached.
type Guard struct {
	sessions SessionQuerier
}

func New(sessions SessionQuerier) *Guard {
	return &Guard{sessions: sessions}
}

func (g *Guard) Check(ctx context.Context, target Screen) (Decision, error) {
	authenticated, err := g.sessions.HasToken(ctx)
	if err != nil {
		return Decision{}, err
	}

	var role models.Role
	if authenticated {
		if role, err = g.sessions.Role(ctx); err != nil {
			return Decision{}, err
		}
	}

	d := Evaluate(target, State{Authenticated: authenticated, Role: role})
	if !d.Allowed() {
		logging.FromContext(ctx).Debug("Navigation redirected",
			slog.String("requested", string(d.Requested)), slog.String("target", string(d.Target)))
	}

	return d, nil
}
