// Package auth issues and verifies the signed access tokens used by the
// catalog API.
package auth

import "slices"

// Principal is the identity a token is issued for. It is owned by the
// credential store; this package only reads it.
type Principal struct {
	ID       string            `json:"id"`
	UserName string            `json:"user_name,omitempty"`
	Email    string            `json:"email,omitempty"`
	Name     string            `json:"name,omitempty"`
	Roles    []string          `json:"roles,omitempty"`
	Claims   map[string]string `json:"claims,omitempty"`
}

// HasRole reports whether p holds at least one of roles.
func (p *Principal) HasRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}
