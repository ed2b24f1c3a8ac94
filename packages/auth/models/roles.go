package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Roles []string

// HasRole reports whether role is among the granted roles.
func (r Roles) HasRole(role string) bool {
	return slices.Contains(r, role)
}

// Claims is the access token payload. Users and their roles live in the
// account service; this API trusts the signed claims.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Roles  Roles  `json:"roles"`
	jwt.RegisteredClaims
}
