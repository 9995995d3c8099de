package auth

import "context"

// Actor is the authenticated identity behind a request. A nil *Actor is anonymous.
type Actor struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email,omitempty"`
	Role              Role   `json:"role"`
	Active            bool   `json:"active"`
	PersonnelID       *int64 `json:"personnel_id,omitempty"`
	MustResetPassword bool   `json:"must_reset_password"`
}

// Authenticated reports whether the actor may pass any capability check at all.
func (a *Actor) Authenticated() bool {
	return a != nil && a.Active && a.Role.Valid()
}

type ctxKey string

const ContextActorKey ctxKey = "actor"

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	actor, ok := ctx.Value(ContextActorKey).(*Actor)
	return actor, ok && actor != nil
}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}
