package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/metareview/internal/client/auth"
	"github.com/iudanet/metareview/internal/client/storage"
)

func (r *runner) newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session and active project",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = r.guarded(routeStatus, func(cmd *cobra.Command, args []string) error {
		return r.status(cmd.Context())
	})
	return cmd
}

func (r *runner) status(ctx context.Context) error {
	snap := r.app.session.Snapshot()

	r.io.Printf("Server: %s\n", r.app.client.BaseURL())
	r.io.Printf("Status: %s\n", snap.Status)

	switch {
	case snap.IsAuthenticated():
		r.io.Printf("User: %s\n", r.app.userLabel())
		printTokenExpiry(r, snap)
	case snap.HasToken():
		// Токен есть, но профиль не загружен (например, сервер недоступен)
		r.io.Println("User: session not validated")
	default:
		r.io.Println("Not logged in. Run 'login' to sign in.")
	}

	if snap.LastError != "" {
		r.io.Printf("Last error: %s\n", snap.LastError)
	}

	pointer, err := r.app.active.Pointer(ctx)
	switch {
	case err == nil:
		r.io.Printf("Active project: %s (#%d)\n", pointer.Name, pointer.ID)
	case errors.Is(err, storage.ErrPointerNotFound), errors.Is(err, storage.ErrInvalidPointer):
		r.io.Println("Active project: none")
	default:
		return err
	}
	return nil
}

func printTokenExpiry(r *runner, snap auth.Snapshot) {
	expiresAt, ok := auth.TokenExpiry(snap.Token)
	if !ok {
		return
	}
	left := time.Until(expiresAt).Round(time.Second)
	if left <= 0 {
		r.io.Printf("Token expired at %s\n", expiresAt.Local().Format(time.DateTime))
		return
	}
	r.io.Printf("Token expires: %s (in %s)\n", expiresAt.Local().Format(time.DateTime), left)
}
