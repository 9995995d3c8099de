package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/transport"
)

type MaintenanceChecker interface {
	UnderMaintenance(ctx context.Context) bool
}

// Maintenance answers 503 to authenticated non-administrators while the
// maintenance flag is set. It must run after the authenticator.
func Maintenance(checker MaintenanceChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := auth.ActorFromContext(r.Context())
			if ok && actor.Authenticated() && actor.Role != auth.RoleAdministrator && checker.UnderMaintenance(r.Context()) {
				base.WriteAppError(w, internal.ErrMaintenance)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
