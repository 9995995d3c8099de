package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/transport"
)

// PasswordReset blocks accounts still holding an issued credential. Routes
// that let the owner change it must be mounted outside this middleware.
func PasswordReset(logger *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor, ok := auth.ActorFromContext(r.Context()); ok && actor.Authenticated() && actor.MustResetPassword {
				logger.InfoContext(r.Context(), "request blocked until password change", "account_id", actor.ID, "path", r.URL.Path)
				base.WriteAppError(w, internal.ErrPasswordResetRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
