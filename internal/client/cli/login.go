package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/metareview/internal/client/auth"
)

type loginInput struct {
	password passwordSource
	email    string
}

func (r *runner) newLoginCommand() *cobra.Command {
	var in loginInput

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session locally",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = r.guarded(routeLogin, func(cmd *cobra.Command, args []string) error {
		return r.login(cmd.Context(), in)
	})

	cmd.Flags().StringVar(&in.email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.password.FromArgs, "password", "", "Password (insecure, prefer "+EnvPassword+" or --password-file)")
	cmd.Flags().StringVar(&in.password.FromFile, "password-file", "", "Read password from file")
	return cmd
}

func (r *runner) login(ctx context.Context, in loginInput) error {
	email := strings.TrimSpace(in.email)
	if email == "" {
		var err error
		if email, err = r.io.ReadInput("Email: "); err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	password, _, err := r.readPassword(in.password, "Password: ")
	if err != nil {
		return err
	}

	r.app.logger.Debug("authenticating", "email", email)

	if err := r.app.session.Login(ctx, auth.Credentials{Email: email, Password: password}); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	r.io.Printf("✓ Logged in as %s\n", r.app.userLabel())
	return nil
}
