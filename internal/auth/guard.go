package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/metrics"
	"github.com/frahmantamala/personnel-records/internal/transport"
)

type DenialKind string

const (
	DenialUnauthenticated DenialKind = "unauthenticated"
	DenialForbidden       DenialKind = "forbidden"
)

// AuthorizationError is returned by Guard.Authorize. It unwraps to the
// *internal.AppError that the HTTP layer renders.
type AuthorizationError struct {
	Kind       DenialKind
	Capability Capability
	appErr     *internal.AppError
}

func (e *AuthorizationError) Error() string {
	return e.appErr.Message
}

func (e *AuthorizationError) Unwrap() error {
	return e.appErr
}

func newAuthorizationError(kind DenialKind, capability Capability) *AuthorizationError {
	appErr := internal.ErrUnauthenticated
	if kind == DenialForbidden {
		appErr = internal.NewForbiddenError(string(capability))
	}
	return &AuthorizationError{Kind: kind, Capability: capability, appErr: appErr}
}

// Authorizer is what services depend on to gate operations.
type Authorizer interface {
	Authorize(ctx context.Context, actor *Actor, capability Capability) error
}

// Guard is the single authorization gate. It holds no state besides its logger.
type Guard struct {
	logger *slog.Logger
}

func NewGuard(logger *slog.Logger) *Guard {
	return &Guard{logger: logger}
}

// Authorize fails with Unauthenticated for anonymous or inactive actors and
// with Forbidden when the role lacks the capability.
func (g *Guard) Authorize(ctx context.Context, actor *Actor, capability Capability) error {
	if !actor.Authenticated() {
		metrics.AuthorizationDecisions.WithLabelValues(string(capability), string(DenialUnauthenticated)).Inc()
		g.logger.WarnContext(ctx, "authorization denied: not authenticated",
			"capability", capability)
		return newAuthorizationError(DenialUnauthenticated, capability)
	}

	if !RoleHasCapability(actor.Role, capability) {
		metrics.AuthorizationDecisions.WithLabelValues(string(capability), string(DenialForbidden)).Inc()
		g.logger.WarnContext(ctx, "authorization denied: insufficient role",
			"actor_id", actor.ID,
			"role", actor.Role,
			"capability", capability)
		return newAuthorizationError(DenialForbidden, capability)
	}

	metrics.AuthorizationDecisions.WithLabelValues(string(capability), "allowed").Inc()
	return nil
}

// Require gates a route on capability using the actor placed on the
// request context by the authenticator.
func (g *Guard) Require(capability Capability) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(g.logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, _ := ActorFromContext(r.Context())
			if err := g.Authorize(r.Context(), actor, capability); err != nil {
				base.HandleServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
