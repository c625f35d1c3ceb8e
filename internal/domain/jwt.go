package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims are the JWT claims carried by front-desk staff tokens
type AdminClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
