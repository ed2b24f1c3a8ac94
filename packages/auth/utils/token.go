package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"fantasy-doubles-api/packages/auth/models"

	"github.com/golang-jwt/jwt/v5"
)

const AccessTokenExpiry = 15 * time.Minute

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken signs an HS256 access token for a user.
func GenerateToken(secret []byte, userID uint, email string, roles models.Roles, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = AccessTokenExpiry
	}

	now := time.Now()
	claims := models.Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates signature and expiry and returns the claims.
func ParseToken(secret []byte, tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
