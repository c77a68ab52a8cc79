package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a JWT token issued by the identity
// provider.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uint `json:"user_id"`
}
