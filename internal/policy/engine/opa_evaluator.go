package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	userdomain "bistro-boss/backend/internal/user/domain"
)

const adminQuery = "data.bistro.authz.allow"

// DefaultAdminPolicy grants admin only to users whose stored role is admin.
const DefaultAdminPolicy = `package bistro.authz

default allow := false

allow if {
	input.user.role == "admin"
}
`

// OPAEvaluator decides admin access with an OPA Rego policy compiled once at construction.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the given Rego module (DefaultAdminPolicy when empty).
// The module must define data.bistro.authz.allow.
func NewOPAEvaluator(ctx context.Context, module string) (*OPAEvaluator, error) {
	if module == "" {
		module = DefaultAdminPolicy
	}
	q, err := rego.New(
		rego.Query(adminQuery),
		rego.Module("bistro_authz.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile admin policy: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// IsAdmin evaluates the admin policy for u. Undefined results count as deny.
func (e *OPAEvaluator) IsAdmin(ctx context.Context, u *userdomain.User) (bool, error) {
	if u == nil {
		return false, nil
	}
	return e.eval(ctx, buildInput(u))
}

// HealthCheck verifies that the in-process engine evaluates the compiled policy against a minimal input.
// Does not touch the database. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	if _, err := e.eval(ctx, map[string]interface{}{
		"user": map[string]interface{}{"email": "", "role": ""},
	}); err != nil {
		return fmt.Errorf("eval admin policy: %w", err)
	}
	return nil
}

func (e *OPAEvaluator) eval(ctx context.Context, input map[string]interface{}) (bool, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy returned %T, want bool", rs[0].Expressions[0].Value)
	}
	return allowed, nil
}

func buildInput(u *userdomain.User) map[string]interface{} {
	return map[string]interface{}{
		"user": map[string]interface{}{
			"id":    u.ID,
			"email": u.Email,
			"role":  string(u.Role),
		},
	}
}
