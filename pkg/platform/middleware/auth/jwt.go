package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	id "renalmatch/pkg/domain"
)

// JWTValidator validates HS256 hospital tokens carrying a hospital_id claim.
type JWTValidator struct {
	signingKey []byte
}

// NewJWTValidator builds a validator over a shared signing key.
func NewJWTValidator(signingKey string) *JWTValidator {
	return &JWTValidator{signingKey: []byte(signingKey)}
}

type hospitalClaims struct {
	HospitalID string `json:"hospital_id"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies the token, returning hospital claims.
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &hospitalClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*hospitalClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token claims invalid")
	}

	hospitalID, err := id.ParseHospitalID(claims.HospitalID)
	if err != nil {
		return nil, fmt.Errorf("hospital_id claim: %w", err)
	}

	return &Claims{HospitalID: hospitalID}, nil
}

// SignToken mints a token for a hospital. Used by operational tooling and
// tests; production tokens come from the hospital identity provider.
func SignToken(signingKey string, hospitalID id.HospitalID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, hospitalClaims{
		HospitalID: hospitalID.String(),
	})
	signed, err := token.SignedString([]byte(signingKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
