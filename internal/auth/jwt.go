// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "lectern"

// Claims are the JWT claims carried by a Lectern session token.
type Claims struct {
	Username       string `json:"username"`
	CongregationID string `json:"congregation_id"`
	SessionID      string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies session tokens.
type TokenManager struct {
	secret     []byte
	sessionTTL time.Duration
}

// NewTokenManager creates a token manager. The secret must be non-empty.
func NewTokenManager(secret string, sessionTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), sessionTTL: sessionTTL}, nil
}

// Issue creates a signed session token for the user. A fresh session ID is
// generated; the returned principal carries it.
func (m *TokenManager) Issue(userID, username, congregationID string) (string, *Principal, error) {
	now := time.Now()
	principal := &Principal{
		ID:             userID,
		Username:       username,
		CongregationID: congregationID,
		SessionID:      uuid.New().String(),
	}

	claims := Claims{
		Username:       username,
		CongregationID: congregationID,
		SessionID:      principal.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionTTL)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, principal, nil
}

// Verify parses and validates a session token, returning the principal it
// identifies.
func (m *TokenManager) Verify(tokenString string) (*Principal, error) {
	if tokenString == "" {
		return nil, ErrNoCredentials
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredentials
		}
		return nil, ErrInvalidCredentials
	}
	if !token.Valid {
		return nil, ErrInvalidCredentials
	}
	if claims.Subject == "" || claims.SessionID == "" || claims.CongregationID == "" {
		return nil, ErrInvalidCredentials
	}

	return &Principal{
		ID:             claims.Subject,
		Username:       claims.Username,
		CongregationID: claims.CongregationID,
		SessionID:      claims.SessionID,
	}, nil
}
