package rbac

import (
	"context"

	"bistro-boss/backend/internal/security"
	userdomain "bistro-boss/backend/internal/user/domain"
)

type ctxKey int

const (
	claimKey ctxKey = iota
	userKey
)

// WithClaim returns a context carrying the verified identity claim.
func WithClaim(ctx context.Context, claim *security.IdentityClaim) context.Context {
	return context.WithValue(ctx, claimKey, claim)
}

// ClaimFromContext returns the identity claim set by the Authenticated gate.
func ClaimFromContext(ctx context.Context) (*security.IdentityClaim, bool) {
	c, ok := ctx.Value(claimKey).(*security.IdentityClaim)
	return c, ok && c != nil && c.Email != ""
}

// WithUser returns a context carrying the user record loaded by the IsAdmin gate.
func WithUser(ctx context.Context, u *userdomain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user record set by IsAdmin.
func UserFromContext(ctx context.Context) (*userdomain.User, bool) {
	u, ok := ctx.Value(userKey).(*userdomain.User)
	return u, ok && u != nil
}
