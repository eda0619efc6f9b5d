package services

import (
	"fmt"

	"storefront/internal/models"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID string
	Email  string
	Role   models.UserRole
}

// Policy decides whether caller may run an admin operation.
type Policy func(caller *Caller) error

// AllowAuthenticated admits any caller with a session and performs no role check.
func AllowAuthenticated(caller *Caller) error {
	if caller == nil || caller.UserID == "" {
		return ErrUnauthorized
	}
	return nil
}

// RequireRoles admits authenticated callers holding one of roles.
func RequireRoles(roles ...models.UserRole) Policy {
	return func(caller *Caller) error {
		if err := AllowAuthenticated(caller); err != nil {
			return err
		}
		for _, r := range roles {
			if caller.Role == r {
				return nil
			}
		}
		return fmt.Errorf("role %s may not manage products: %w", caller.Role, ErrForbidden)
	}
}

// AdminPolicy returns the policy used for admin procedures.
func AdminPolicy(enforceRole bool) Policy {
	if enforceRole {
		return RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	}
	return AllowAuthenticated
}
