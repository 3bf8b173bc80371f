// Package router decides whether a command (route) may run for the
// current session, the same way a navigation guard gates page changes.
package router

import (
	"context"
	"log/slog"

	"github.com/iudanet/metareview/internal/client/auth"
)

// Route describes a dispatchable command
type Route struct {
	Name string
	// RequiresAuth - маршрут доступен только после входа
	RequiresAuth bool
	// GuestOnly - маршрут доступен только без сессии (login, register)
	GuestOnly bool
}

// Session is the part of the session the guard reads
type Session interface {
	Snapshot() auth.Snapshot
	Initialize(ctx context.Context) error
	HasPersistedToken(ctx context.Context) (bool, error)
}

// Decision is the outcome of route resolution
type Decision int

const (
	// Allow - маршрут можно выполнять
	Allow Decision = iota
	// RedirectLogin - требуется вход
	RedirectLogin
	// RedirectHome - пользователь уже вошел, маршрут только для гостей
	RedirectHome
)

// String returns the decision name
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Result of Guard.Resolve
type Result struct {
	// Target - маршрут, который нужно выполнить вместо запрошенного
	Target   string
	Route    Route
	Decision Decision
}

// Guard resolves routes against the session
type Guard struct {
	session Session
	logger  *slog.Logger
	routes  map[string]Route
	login   string
	home    string
}

// NewGuard creates a guard over routes. login is the route used for
// unauthenticated access, home the default route after login.
func NewGuard(session Session, routes []Route, login, home string, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Guard{
		session: session,
		logger:  logger,
		routes:  make(map[string]Route, len(routes)),
		login:   login,
		home:    home,
	}
	for _, r := range routes {
		g.routes[r.Name] = r
	}
	return g
}

// Route returns the route registered under name
func (g *Guard) Route(name string) (Route, bool) {
	r, ok := g.routes[name]
	return r, ok
}

// Resolve decides whether the named route may run.
//
// On the first dispatch after a restart the session is Idle while a token is
// persisted; the guard then initializes the session before deciding. If the
// session is already Loading (the bootstrap hook started it) the guard joins
// that initialization instead of deciding on a transient state.
// Unknown routes redirect home.
func (g *Guard) Resolve(ctx context.Context, name string) Result {
	route, ok := g.routes[name]
	if !ok {
		g.logger.Debug("unknown route", "route", name)
		return Result{Route: Route{Name: name}, Decision: RedirectHome, Target: g.home}
	}

	g.ensureInitialized(ctx)

	snap := g.session.Snapshot()
	authenticated := snap.IsAuthenticated()

	g.logger.Debug("resolving route",
		"route", route.Name,
		"status", snap.Status.String(),
		"requires_auth", route.RequiresAuth,
		"guest_only", route.GuestOnly,
	)

	switch {
	case route.RequiresAuth && !authenticated:
		return Result{Route: route, Decision: RedirectLogin, Target: g.login}
	case route.GuestOnly && authenticated:
		return Result{Route: route, Decision: RedirectHome, Target: g.home}
	default:
		return Result{Route: route, Decision: Allow, Target: route.Name}
	}
}

func (g *Guard) ensureInitialized(ctx context.Context) {
	switch g.session.Snapshot().Status {
	case auth.StatusLoading:
		// Присоединяемся к идущей инициализации
	case auth.StatusIdle:
		persisted, err := g.session.HasPersistedToken(ctx)
		if err != nil {
			g.logger.Warn("failed to check persisted token", "error", err)
			return
		}
		if !persisted {
			return
		}
	default:
		return
	}

	if err := g.session.Initialize(ctx); err != nil {
		// Решение принимается по итоговому состоянию сессии
		g.logger.Debug("session initialization failed", "error", err)
	}
}
