package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/litc-ly/claims_backend/internal/core/domain"
	"github.com/litc-ly/claims_backend/internal/middleware"
)

// GenerateJWT generates a signed access token carrying the user's identity
// and workflow role.
func GenerateJWT(user *domain.User, secret string, expiryDuration time.Duration, issuer string) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(expiryDuration)
	claims := middleware.ClaimsTokenClaims{
		Name: user.Name,
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}
