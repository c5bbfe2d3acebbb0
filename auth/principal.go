// Package auth resolves callers from credentials and checks their roles.
//
// Workflows only see a Principal. The credential scheme behind it (JWT today) can be
// swapped without touching them.
package auth

import (
	"strings"

	"school-cafe-api/apperr"
	"school-cafe-api/models"
)

// Principal is an authenticated caller.
type Principal struct {
	UserID   uint
	Username string
	Role     models.UserRole
}

func (p Principal) Is(role models.UserRole) bool {
	return p.Role == role
}

// Require fails with Forbidden unless p holds one of roles.
func Require(p Principal, roles ...models.UserRole) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return apperr.New(apperr.Forbidden, "Access denied. Required role(s): %s", RolesString(roles))
}

func RolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
