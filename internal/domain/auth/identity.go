package auth

import (
	"context"

	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
)

// Identity is the caller resolved from a verified access token. Workflows
// receive it as an explicit argument and take actor fields from it.
type Identity struct {
	UserID     string
	EmployeeID string
	Role       user.Role
}

func (i Identity) Can(p user.Permission) bool {
	return user.HasPermission(i.Role, p)
}

// ActsFor reports whether the caller may operate on employeeID: either it is
// the caller's own record or the role grants the elevated permission.
func (i Identity) ActsFor(employeeID string, elevated user.Permission) bool {
	if i.EmployeeID != "" && i.EmployeeID == employeeID {
		return true
	}
	return i.Can(elevated)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
