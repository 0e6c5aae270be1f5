package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// InitJWT sets the HMAC secret used to sign and verify caller tokens. Must
// be called once at startup before any handler runs.
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// MerchantClaims are the claims carried by a caller's bearer token.
type MerchantClaims struct {
	MerchantID string `json:"merchant_id"`
	Email      string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT issues a signed merchant token. Used by tests and local
// tooling; production tokens come from the identity service with the same
// shared secret.
func GenerateJWT(merchantID, email string) (string, error) {
	claims := MerchantClaims{
		MerchantID: merchantID,
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   merchantID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateJWT parses and verifies a merchant token and returns its claims.
func ValidateJWT(tokenString string) (*MerchantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &MerchantClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*MerchantClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.MerchantID == "" {
		claims.MerchantID = claims.Subject
	}
	if claims.MerchantID == "" {
		return nil, errors.New("token missing merchant identity")
	}
	return claims, nil
}
