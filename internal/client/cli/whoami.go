package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func (r *runner) newWhoamiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = r.guarded(routeWhoami, func(cmd *cobra.Command, args []string) error {
		user := r.app.session.Snapshot().User
		if user == nil {
			return ErrLoginRequired
		}

		r.io.Printf("ID: %d\n", user.ID)
		r.io.Printf("Email: %s\n", user.Email)
		if user.FullName != "" {
			r.io.Printf("Name: %s\n", user.FullName)
		}
		if !user.CreatedAt.IsZero() {
			r.io.Printf("Member since: %s\n", user.CreatedAt.Local().Format(time.DateOnly))
		}
		return nil
	})
	return cmd
}
