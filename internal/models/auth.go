package models

import "github.com/golang-jwt/jwt/v5"

// Portal roles carried in access tokens.
const (
	RolePatient      = "PATIENT"
	RolePractitioner = "PRACTITIONER"
	RolePharmacist   = "PHARMACIST"
	RoleSupport      = "SUPPORT"
)

// Claims are the JWT claims issued by the external identity service.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry one of the given roles.
func (c *Claims) HasRole(roles ...string) bool {
	if c == nil {
		return false
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}
