// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package session issues and verifies stateless bearer tokens.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed session lifetime. There is no refresh and no
// revocation: logout is client-local until natural expiry.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken is returned on a missing, malformed, forged or
// expired token.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the account projection carried in a session token. It is
// not re-checked against the store, so it can be stale relative to
// concurrent profile updates until the next login.
type Identity struct {
	UserID int64
	Email  string
	Name   string
	Avatar string
}

type sessionClaims struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and parses session tokens with a process-wide secret.
type Service struct {
	secret []byte
	now    func() time.Time
}

// New creates a session service.
func New(secret string) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	return &Service{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token for the given identity with a 7-day expiry.
func (s *Service) Issue(id Identity) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Email:  id.Email,
		Name:   id.Name,
		Avatar: id.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the identity it
// carries. All failures collapse to ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID: userID,
		Email:  claims.Email,
		Name:   claims.Name,
		Avatar: claims.Avatar,
	}, nil
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
