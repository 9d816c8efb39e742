// Package auth issues and validates the bearer tokens that protect the
// notification and admin API.
package auth

import (
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in tokens.
const (
	// RoleAdmin may use every route, including the admin ones.
	RoleAdmin = "admin"

	// RolePool is held by data servers. It may only post notifications.
	RolePool = "pool"
)

// ValidRoles lists the roles a token can be issued for.
var ValidRoles = []string{RoleAdmin, RolePool}

// IsValidRole reports whether role can be put in a token.
func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, role)
}

// Claims represents JWT claims for API authentication. The subject names
// the operator or the pool the token was issued to.
type Claims struct {
	jwt.RegisteredClaims

	// Role is "admin" or "pool".
	Role string `json:"role"`
}

// IsAdmin returns true if the token holder has the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// HasRole returns true if the token holder has any of roles.
func (c *Claims) HasRole(roles ...string) bool {
	return slices.Contains(roles, c.Role)
}

// ParseUnverified decodes the claims of token without checking its
// signature. Clients use it to display a token's role and expiry.
func ParseUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
