// Package guard decides whether a route may render given the rehydration flag
// and the auth state.
package guard

import (
	"context"
	"strings"
	"sync/atomic"

	"storefront-client/internal/models"
	"storefront-client/internal/service"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"go.uber.org/zap"
)

type State string

const (
	WaitingForRehydration State = "waiting-for-rehydration"
	CheckingAuth          State = "checking-auth"
	Authenticated         State = "authenticated"
	Unauthenticated       State = "unauthenticated"
)

type Decision string

const (
	Wait          Decision = "wait"
	Render        Decision = "render"
	RedirectLogin Decision = "redirect-login"
	RedirectAdmin Decision = "redirect-admin"
	NotFound      Decision = "not-found"
)

const (
	LoginRoute     = "/login"
	DashboardRoute = "/admin/dashboard"
)

type routeKind int

const (
	public routeKind = iota
	protected
	shopper
	admin
)

var routes = []struct {
	pattern string
	kind    routeKind
}{
	{"/signup", public},
	{"/login", public},
	{"/forgot-password", public},
	{"/reset-password/:userId/:token", public},

	{"/logout", protected},
	{"/product-details/:id", protected},

	{"/", shopper},
	{"/cart", shopper},
	{"/profile", shopper},
	{"/checkout", shopper},
	{"/order-success/:id", shopper},
	{"/orders", shopper},
	{"/wishlist", shopper},

	{"/admin/dashboard", admin},
	{"/admin/product-update/:id", admin},
	{"/admin/add-product", admin},
	{"/admin/orders", admin},
	{"/admin/brand", admin},
	{"/admin/user", admin},
}

// Rehydration is satisfied by *persist.Persistor.
type Rehydration interface {
	Rehydrated() bool
}

// Session is satisfied by *service.Auth.
type Session interface {
	CurrentUser() (models.User, bool)
	AuthChecked() bool
	CheckAuth(ctx context.Context) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Tracker() *state.Tracker
}

type Guard struct {
	session    Session
	rehydrated Rehydration
	logger     *zap.Logger

	checking atomic.Bool
}

func New(session Session, rehydrated Rehydration) *Guard {
	return &Guard{
		session:    session,
		rehydrated: rehydrated,
		logger:     util.Named("guard"),
	}
}

func (g *Guard) State() State {
	if !g.rehydrated.Rehydrated() {
		return WaitingForRehydration
	}
	if _, ok := g.session.CurrentUser(); ok {
		return Authenticated
	}
	if g.session.AuthChecked() {
		return Unauthenticated
	}
	return CheckingAuth
}

// Decide returns what the view should do for path. A user present renders
// protected routes even while a check is in flight; the login redirect only
// happens once a check has completed without a user.
func (g *Guard) Decide(path string) Decision {
	kind, known := classify(path)
	if known && kind == public {
		return Render
	}

	st := g.State()
	if st == WaitingForRehydration {
		return Wait
	}

	user, ok := g.session.CurrentUser()
	if ok && user.IsAdmin {
		if !known || kind == shopper {
			return RedirectAdmin
		}
		return Render
	}
	if !known || (ok && kind == admin) {
		return NotFound
	}

	switch st {
	case Authenticated:
		return Render
	case Unauthenticated:
		return RedirectLogin
	default:
		return Wait
	}
}

// EnsureAuthChecked runs check-auth once after rehydration unless a check
// already completed or is in flight. It reports whether a check ran.
func (g *Guard) EnsureAuthChecked(ctx context.Context) (bool, error) {
	if !g.rehydrated.Rehydrated() || g.session.AuthChecked() {
		return false, nil
	}
	if g.session.Tracker().Status(service.OpCheckAuth) == state.StatusPending {
		return false, nil
	}
	if !g.checking.CompareAndSwap(false, true) {
		return false, nil
	}
	defer g.checking.Store(false)

	_, err := g.session.CheckAuth(ctx)
	if err != nil {
		g.logger.Debug("Auth check found no session", zap.Error(err))
	}
	return true, err
}

// Logout signs out; the guard is Unauthenticated afterwards even when the
// server call fails.
func (g *Guard) Logout(ctx context.Context) error {
	return g.session.Logout(ctx)
}

func classify(path string) (routeKind, bool) {
	for _, r := range routes {
		if match(r.pattern, path) {
			return r.kind, true
		}
	}
	return 0, false
}

func match(pattern, path string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	want := strings.Split(pattern, "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if strings.HasPrefix(want[i], ":") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
