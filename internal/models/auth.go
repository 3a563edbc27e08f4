package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	Role        UserRole `json:"role"`
	Email       string   `json:"email"`
	FacilityIDs []string `json:"facility_ids,omitempty"`
	jwt.RegisteredClaims
}

// Viewer converts the claims into a read scope.
func (c *JWTClaims) Viewer() Viewer {
	return Viewer{UserID: c.UserID, Role: c.Role, FacilityIDs: c.FacilityIDs}
}
