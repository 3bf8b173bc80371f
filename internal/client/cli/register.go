package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pkgapi "github.com/iudanet/metareview/pkg/api"
)

func (r *runner) newRegisterCommand() *cobra.Command {
	var (
		email    string
		fullName string
		password passwordSource
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = r.guarded(routeRegister, func(cmd *cobra.Command, args []string) error {
		address := strings.TrimSpace(email)
		if address == "" {
			var err error
			if address, err = r.io.ReadInput("Email: "); err != nil {
				return fmt.Errorf("failed to read email: %w", err)
			}
		}

		pass, prompted, err := r.readPassword(password, "Password (min 8 characters): ")
		if err != nil {
			return err
		}
		if prompted {
			confirm, err := r.io.ReadPassword("Confirm password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if confirm != pass {
				return fmt.Errorf("passwords do not match")
			}
		}

		req := pkgapi.RegisterRequest{Email: address, Password: pass, FullName: strings.TrimSpace(fullName)}
		if err := r.app.session.Register(cmd.Context(), req); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		r.io.Println("✓ Account created. Run 'login' to sign in.")
		return nil
	})

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Display name")
	cmd.Flags().StringVar(&password.FromArgs, "password", "", "Password (insecure, prefer "+EnvPassword+" or --password-file)")
	cmd.Flags().StringVar(&password.FromFile, "password-file", "", "Read password from file")
	return cmd
}
