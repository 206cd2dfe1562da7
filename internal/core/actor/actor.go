// Package actor provides the authenticated-actor model and request-scoped
// propagation. Authentication itself is an external concern; by the time the
// core runs, the actor is already resolved from the access token.
package actor

import (
	"context"

	"officina/internal/core/id"
)

// Role is the back-office role carried by an access token.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTechnician Role = "TECHNICIAN"
	RoleCommercial Role = "COMMERCIAL"
)

// ParseRole validates a raw role claim.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleTechnician, RoleCommercial:
		return Role(s), true
	}
	return "", false
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID   id.ID
	Role Role
}

type actorKey struct{}

// WithActor adds the actor to context.
// Used by middleware to propagate the authenticated user through the request chain.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor from context.
func FromContext(ctx context.Context) (Actor, bool) {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a, true
	}
	return Actor{}, false
}

// GetActorID returns the actor ID from context or the nil ID.
func GetActorID(ctx context.Context) id.ID {
	if a, ok := FromContext(ctx); ok {
		return a.ID
	}
	return id.Nil()
}
