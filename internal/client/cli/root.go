// Package cli implements the metareview command line client.
//
// Every command is dispatched through the navigation guard: commands that
// need a session redirect to login, login and register redirect to status
// when a session already exists.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/metareview/internal/client/iocli"
	"github.com/iudanet/metareview/internal/client/router"
	"github.com/iudanet/metareview/internal/config"
)

// ErrLoginRequired is returned by commands that need a session when none exists
var ErrLoginRequired = errors.New("not logged in, run 'metareview login' first")

// Options configures Execute
type Options struct {
	// LogOutput - куда писать slog, по умолчанию os.Stderr
	LogOutput io.Writer
	Version   string
}

type globalFlags struct {
	configPath string
	serverURL  string
	dbPath     string
	storage    string
	logLevel   string
	timeout    time.Duration
}

// runner хранит состояние одного запуска: App создается один раз и
// переиспользуется всеми командами интерактивной оболочки
type runner struct {
	io    iocli.IO
	opts  Options
	app   *App
	flags globalFlags
	shell bool
}

// Execute runs the command line args against io
func Execute(ctx context.Context, args []string, io iocli.IO, opts Options) (err error) {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	r := &runner{io: io, opts: opts}
	defer func() {
		if cErr := r.close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	cmd := r.newRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (r *runner) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "metareview",
		Short:         "Command line client for the metareview research server",
		Version:       r.opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.ensureApp(cmd)
		},
	}
	root.SetOut(r.io)
	root.SetErr(r.io)

	pf := root.PersistentFlags()
	pf.StringVar(&r.flags.configPath, "config", "", "Path to config file (default "+config.DefaultPath()+")")
	pf.StringVar(&r.flags.serverURL, "server", "", "Server URL")
	pf.StringVar(&r.flags.dbPath, "db", "", "Path to local storage (bolt file or directory)")
	pf.StringVar(&r.flags.storage, "storage", "", "Local storage backend: bolt or dir")
	pf.StringVar(&r.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.DurationVar(&r.flags.timeout, "timeout", 0, "HTTP request timeout")

	root.AddCommand(
		r.newLoginCommand(),
		r.newRegisterCommand(),
		r.newLogoutCommand(),
		r.newStatusCommand(),
		r.newWhoamiCommand(),
		r.newProjectsCommand(),
		r.newUseCommand(),
		r.newUnuseCommand(),
		r.newSearchCommand(),
		r.newUploadCommand(),
	)
	if !r.shell {
		root.AddCommand(r.newShellCommand())
	}

	return root
}

// ensureApp загружает конфиг и создает App при первой команде
func (r *runner) ensureApp(cmd *cobra.Command) error {
	if r.app != nil {
		return nil
	}

	cfg, err := config.LoadClient(r.flags.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := config.NewLogger(r.opts.LogOutput, cfg.LogLevel)
	if err != nil {
		return err
	}

	app, err := NewApp(cmd.Context(), cfg, r.io, logger)
	if err != nil {
		return err
	}
	app.Bootstrap(cmd.Context())
	r.app = app
	return nil
}

// applyFlags переопределяет конфиг флагами командной строки
func (r *runner) applyFlags(cfg *config.ClientConfig) {
	if r.flags.serverURL != "" {
		cfg.ServerURL = r.flags.serverURL
	}
	if r.flags.dbPath != "" {
		cfg.Storage.Path = r.flags.dbPath
	}
	if r.flags.storage != "" {
		cfg.Storage.Backend = r.flags.storage
	}
	if r.flags.logLevel != "" {
		cfg.LogLevel = r.flags.logLevel
	}
	if r.flags.timeout > 0 {
		cfg.Timeout = r.flags.timeout
	}
}

func (r *runner) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

// guarded оборачивает команду проверкой маршрута
func (r *runner) guarded(route string, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		res := r.app.guard.Resolve(ctx, route)
		switch res.Decision {
		case router.RedirectLogin:
			if !r.shell {
				return ErrLoginRequired
			}
			r.io.Println("Login required.")
			if err := r.login(ctx, loginInput{}); err != nil {
				return err
			}
			if res = r.app.guard.Resolve(ctx, route); res.Decision != router.Allow {
				return ErrLoginRequired
			}
		case router.RedirectHome:
			r.io.Printf("Already logged in as %s.\n", r.app.userLabel())
			return r.status(ctx)
		}

		if res.Route.RequiresAuth {
			// Ошибка восстановления проекта не мешает выполнить команду
			if err := r.app.active.LoadFromStorage(ctx); err != nil {
				r.app.logger.Warn("failed to restore active project", "error", err)
			}
		}

		return run(cmd, args)
	}
}
