package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/iudanet/metareview/internal/server/handlers"
)

// RecoveryMiddleware перехватывает panic в обработчике, логирует стек
// и отвечает 500 {"detail": "Internal server error"}
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				// Штатный способ прервать ответ, пробрасываем дальше
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					"error", err,
					"request_id", RequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				handlers.SendError(logger, w, handlers.DetailInternal, http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
