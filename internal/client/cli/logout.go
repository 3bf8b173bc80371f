package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (r *runner) newLogoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the saved session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = r.guarded(routeLogout, func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := r.app.session.Logout(ctx); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		// Явный выход сбрасывает и активный проект
		if err := r.app.active.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear active project: %w", err)
		}

		r.io.Println("✓ Logged out")
		return nil
	})
	return cmd
}
