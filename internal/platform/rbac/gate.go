// Package rbac implements the authorization guard chain. Each gate inspects an explicit request
// value and the context produced by earlier gates, and either returns a continuation context or a
// terminal error. Gates run left to right; the first failure stops the chain.
package rbac

import (
	"context"
	"errors"
	"fmt"

	"bistro-boss/backend/internal/security"
	userdomain "bistro-boss/backend/internal/user/domain"
)

var (
	// ErrUnauthenticated means no valid credential accompanied the request.
	ErrUnauthenticated = errors.New("unauthorized access")
	// ErrForbidden means the caller is authenticated but not allowed to perform the request.
	ErrForbidden = errors.New("forbidden access")
)

// Request is the transport-independent view of an incoming request that gates inspect.
type Request struct {
	// Authorization is the raw Authorization header value.
	Authorization string
	// ResourceEmail is the identity a path or query parameter claims to act on; empty when the route has none.
	ResourceEmail string
}

// Gate checks one authorization condition.
type Gate func(ctx context.Context, req Request) (context.Context, error)

// TokenVerifier verifies a raw Authorization header. Implemented by security.TokenProvider.
type TokenVerifier interface {
	Verify(rawHeader string) (*security.IdentityClaim, error)
}

// UserGetter loads a user record by email. Returns nil, nil when no user exists.
type UserGetter interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// Authorizer decides whether a loaded user holds the admin role.
type Authorizer interface {
	IsAdmin(ctx context.Context, user *userdomain.User) (bool, error)
}

// Chain composes gates into one gate that applies them in order and stops at the first error.
func Chain(gates ...Gate) Gate {
	return func(ctx context.Context, req Request) (context.Context, error) {
		for _, g := range gates {
			next, err := g(ctx, req)
			if err != nil {
				return ctx, err
			}
			ctx = next
		}
		return ctx, nil
	}
}

// Authenticated requires a valid bearer token and attaches the verified claim to the context.
func Authenticated(v TokenVerifier) Gate {
	return func(ctx context.Context, req Request) (context.Context, error) {
		claim, err := v.Verify(req.Authorization)
		if err != nil || claim == nil || claim.Email == "" {
			return ctx, ErrUnauthenticated
		}
		return WithClaim(ctx, claim), nil
	}
}

// OwnsResource requires the claim email to equal the request's resource email. It must run before
// any identity-scoped data is read.
func OwnsResource() Gate {
	return func(ctx context.Context, req Request) (context.Context, error) {
		claim, ok := ClaimFromContext(ctx)
		if !ok {
			return ctx, ErrUnauthenticated
		}
		resource := security.NormalizeEmail(req.ResourceEmail)
		if resource == "" || resource != claim.Email {
			return ctx, ErrForbidden
		}
		return ctx, nil
	}
}

// IsAdmin loads the caller's user record and requires the admin role. A missing record is Forbidden.
// Store or policy failures are returned wrapped so the transport can answer with a server error.
func IsAdmin(users UserGetter, authz Authorizer) Gate {
	return func(ctx context.Context, req Request) (context.Context, error) {
		claim, ok := ClaimFromContext(ctx)
		if !ok {
			return ctx, ErrUnauthenticated
		}
		u, err := users.GetByEmail(ctx, claim.Email)
		if err != nil {
			return ctx, fmt.Errorf("rbac: load user: %w", err)
		}
		if u == nil {
			return ctx, ErrForbidden
		}
		allowed, err := authz.IsAdmin(ctx, u)
		if err != nil {
			return ctx, fmt.Errorf("rbac: evaluate admin policy: %w", err)
		}
		if !allowed {
			return ctx, ErrForbidden
		}
		return WithUser(ctx, u), nil
	}
}
