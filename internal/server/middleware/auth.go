package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/metareview/internal/server/handlers"
)

// AuthMiddleware проверяет bearer токен и кладет id пользователя в контекст.
// Ошибки отдаются в формате {"detail": ...} с заголовком WWW-Authenticate.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.WarnContext(r.Context(), "missing bearer token", "path", r.URL.Path)
				handlers.SendUnauthorized(logger, w, handlers.DetailNotAuthenticated)
				return
			}

			userID, err := handlers.ValidateAccessToken(jwtConfig, strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(r.Context(), "invalid access token", "error", err)
				handlers.SendUnauthorized(logger, w, handlers.DetailInvalidCredentials)
				return
			}

			logger.DebugContext(r.Context(), "user authenticated", "user_id", userID)

			next.ServeHTTP(w, r.WithContext(handlers.WithUserID(r.Context(), userID)))
		})
	}
}
