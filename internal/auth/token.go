// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/teamkwabo-boop/project29-backend/internal/model"
)

// TokenTTL is the fixed session token lifetime.
const TokenTTL = 8 * time.Hour

// Claims are the session token claims for the admin account.
type Claims struct {
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless HS256 session tokens.
// Validity is determined solely by signature and expiry at verification
// time; nothing is persisted.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewTokenService creates a TokenService with the given signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		signingKey: []byte(secret),
		ttl:        TokenTTL,
		now:        time.Now,
	}
}

// Issue produces a signed token embedding the admin identity, expiring
// TokenTTL after issuance.
func (s *TokenService) Issue(adminID int64, username string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates signature and expiry and returns the embedded claims.
// Malformed, tampered, or expired tokens all yield model.ErrInvalidToken;
// callers must not learn which check failed.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, model.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}
