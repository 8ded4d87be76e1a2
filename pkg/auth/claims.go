package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims carry the operator identity minted by the external
// authentication service. The backend only reads them; it never issues
// tokens itself.
type AccessTokenClaims struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"name"`
	Role        string    `json:"role"`
	jwt.RegisteredClaims
}
