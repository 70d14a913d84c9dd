package shared

import (
	"context"

	"github.com/civreg-ph/civreg/internal/roles"
)

// Actor is the acting account threaded through every workflow call.
// Services validate it explicitly instead of reading ambient session state.
type Actor struct {
	AccountID int64
	Username  string
	Role      roles.Role
	PersonID  *string
	Active    bool
}

// Authenticated reports whether the actor represents a live account.
func (a Actor) Authenticated() bool {
	return a.AccountID != 0 && a.Active
}

// Staff reports whether the actor holds a staff role.
func (a Actor) Staff() bool {
	return a.Authenticated() && roles.IsStaff(a.Role)
}

type actorContextKey struct{}

// ContextWithActor stores the acting account in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the acting account from context.
// The zero Actor is returned for anonymous requests.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}
