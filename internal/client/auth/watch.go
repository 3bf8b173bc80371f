package auth

import (
	"context"

	"github.com/iudanet/metareview/internal/client/storage"
)

// Watch keeps the session in step with a store shared by several processes.
// When another process logs out (or logs in with a different token) the
// in-memory session is dropped; the next guarded command re-initializes it
// from the store. Blocks until ctx is done.
func (s *Service) Watch(ctx context.Context, w storage.TokenWatcher) error {
	return w.WatchToken(ctx, func(token string) {
		// Собственные записи сервиса приходят с тем же токеном
		if token == s.Token() {
			return
		}
		if token == "" {
			s.Forget("token removed by another process")
			return
		}
		s.Forget("token replaced by another process")
	})
}
