// Package auth hashes passwords and issues and validates access tokens.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/policy"
	"github.com/garnizeh/frota/pkg/models"
)

// Claims is the access token payload. Subject carries the account id and
// ID the token id used for revocation.
type Claims struct {
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CompanyID string      `json:"companyId,omitempty"`
	DriverID  string      `json:"driverId,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() policy.Actor {
	return policy.Actor{
		AccountID: c.Subject,
		Email:     c.Email,
		Role:      c.Role,
		CompanyID: c.CompanyID,
		DriverID:  c.DriverID,
	}
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for the actor, stamping jti, iat and exp.
func (m *TokenManager) Issue(a policy.Actor) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Email:     a.Email,
		Role:      a.Role,
		CompanyID: a.CompanyID,
		DriverID:  a.DriverID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.AccountID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Validate parses and verifies the token. Any failure is Unauthorized.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, &apperr.Error{Kind: apperr.KindUnauthorized, Message: "invalid or expired token", Err: err}
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return claims, nil
}
