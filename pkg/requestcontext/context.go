// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Context keys and getter/setter functions for values that are typically set
// by middleware but consumed by services. By keeping this package free of
// net/http dependencies, services can import only what they need without
// pulling in HTTP-related code.
//
// Usage in services (read values):
//
//	orgID := requestcontext.OrgID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithOrgID(ctx, orgID)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithRole(ctx, domain.RoleManager)
package requestcontext

import (
	"context"
	"time"

	"convoy/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	orgIDKey       struct{}
	actorIDKey     struct{}
	roleKey        struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// WithOrgID stores the organization scope for the request.
func WithOrgID(ctx context.Context, id domain.OrgID) context.Context {
	return context.WithValue(ctx, orgIDKey{}, id)
}

// OrgID returns the organization scope, or the zero OrgID when unset.
// Services treat a zero OrgID as a hard precondition failure for writes.
func OrgID(ctx context.Context) domain.OrgID {
	id, _ := ctx.Value(orgIDKey{}).(domain.OrgID)
	return id
}

// WithActorID stores the acting user's identifier for audit attribution.
func WithActorID(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actor)
}

// ActorID returns the acting user's identifier, or "" when unset.
func ActorID(ctx context.Context) string {
	actor, _ := ctx.Value(actorIDKey{}).(string)
	return actor
}

// WithRole stores the actor's role for permission gating.
func WithRole(ctx context.Context, role domain.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// Role returns the actor's role, or "" when unset.
func Role(ctx context.Context) domain.Role {
	role, _ := ctx.Value(roleKey{}).(domain.Role)
	return role
}

// WithRequestID stores the correlation identifier for the request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation identifier, or "" when unset.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithTime injects a request-scoped "now" so all operations within a single
// request observe the same timestamp.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the request-scoped time, falling back to time.Now() when the
// middleware did not run (background jobs, tests without injection).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
