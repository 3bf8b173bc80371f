package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/iudanet/metareview/internal/client/activeproject"
	"github.com/iudanet/metareview/internal/client/api"
	"github.com/iudanet/metareview/internal/client/auth"
	"github.com/iudanet/metareview/internal/client/gateway"
	"github.com/iudanet/metareview/internal/client/iocli"
	"github.com/iudanet/metareview/internal/client/papers"
	"github.com/iudanet/metareview/internal/client/projects"
	"github.com/iudanet/metareview/internal/client/router"
	"github.com/iudanet/metareview/internal/client/storage"
	"github.com/iudanet/metareview/internal/client/storage/boltdb"
	"github.com/iudanet/metareview/internal/client/storage/filestore"
	"github.com/iudanet/metareview/internal/config"
)

// Route names
const (
	routeLogin    = "login"
	routeRegister = "register"
	routeLogout   = "logout"
	routeStatus   = "status"
	routeWhoami   = "whoami"
	routeProjects = "projects"
	routeUse      = "use"
	routeUnuse    = "unuse"
	routeSearch   = "search"
	routeUpload   = "upload"
)

// routes - таблица маршрутов: какие команды требуют входа, какие только для гостей
var routes = []router.Route{
	{Name: routeLogin, GuestOnly: true},
	{Name: routeRegister, GuestOnly: true},
	{Name: routeLogout},
	{Name: routeStatus},
	{Name: routeSearch},
	{Name: routeWhoami, RequiresAuth: true},
	{Name: routeProjects, RequiresAuth: true},
	{Name: routeUse, RequiresAuth: true},
	{Name: routeUnuse, RequiresAuth: true},
	{Name: routeUpload, RequiresAuth: true},
}

// App wires the client components for one process
type App struct {
	io       iocli.IO
	logger   *slog.Logger
	store    storage.Storage
	watcher  storage.TokenWatcher
	client   *api.Client
	session  *auth.Service
	gateway  *gateway.Gateway
	projects projects.Service
	papers   papers.Service
	active   *activeproject.Store
	guard    *router.Guard
	cancel   context.CancelFunc
	cfg      config.ClientConfig
	wg       sync.WaitGroup
}

// NewApp opens the local store and builds the client components
func NewApp(ctx context.Context, cfg config.ClientConfig, io iocli.IO, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{cfg: cfg, io: io, logger: logger}

	switch cfg.Storage.Backend {
	case config.StorageDir:
		st, err := filestore.New(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		app.store = st
		app.watcher = st
	default:
		st, err := boltdb.New(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		app.store = st
	}

	app.client = api.NewClient(cfg.ServerURL,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
		api.WithEndpoints(api.Endpoints{
			Token:       cfg.Endpoints.Token,
			Register:    cfg.Endpoints.Register,
			CurrentUser: cfg.Endpoints.CurrentUser,
		}),
	)
	app.session = auth.NewService(app.client, app.store, logger)
	app.gateway = gateway.New(app.client, app.session, logger)
	app.projects = projects.NewService(app.gateway)
	app.papers = papers.NewService(app.gateway)
	app.active = activeproject.New(app.store, app.projects, logger)
	app.guard = router.NewGuard(app.session, routes, routeLogin, routeStatus, logger)

	return app, nil
}

// Bootstrap starts session initialization in the background, the way an
// application restores its session on startup, and, for shared stores,
// follows logins and logouts made by other processes. Commands dispatched
// meanwhile go through the guard, which joins the running initialization.
func (a *App) Bootstrap(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.session.Initialize(ctx); err != nil {
			a.logger.Debug("session bootstrap failed", "error", err)
		}
	}()

	if a.watcher != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.session.Watch(ctx, a.watcher); err != nil {
				a.logger.Warn("token watcher stopped", "error", err)
			}
		}()
	}
}

// Close stops background work and closes the store
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if err := a.store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}

// userLabel возвращает email пользователя сессии для вывода
func (a *App) userLabel() string {
	snap := a.session.Snapshot()
	if snap.User == nil {
		return "unknown user"
	}
	if name := strings.TrimSpace(snap.User.FullName); name != "" {
		return fmt.Sprintf("%s <%s>", name, snap.User.Email)
	}
	return snap.User.Email
}
