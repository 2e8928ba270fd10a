// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package identity

import (
	"context"
	"slices"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google ID tokens against a set of accepted
// audiences (web, Android and iOS client ids of the app).
type GoogleVerifier struct {
	audiences []string
}

// NewGoogleVerifier creates a verifier. Empty client ids are ignored.
func NewGoogleVerifier(clientIDs ...string) *GoogleVerifier {
	audiences := make([]string, 0, len(clientIDs))
	for _, id := range clientIDs {
		if id != "" {
			audiences = append(audiences, id)
		}
	}
	return &GoogleVerifier{audiences: audiences}
}

// Verify checks the token signature and issuer via Google's public keys
// and matches the audience against the configured client ids.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Profile, error) {
	// Audience is checked below against the full set; idtoken.Validate
	// only supports a single expected audience.
	payload, err := idtoken.Validate(ctx, token, "")
	if err != nil {
		return nil, ErrInvalidToken
	}

	if len(v.audiences) > 0 && !slices.Contains(v.audiences, payload.Audience) {
		return nil, ErrInvalidToken
	}

	email, _ := payload.Claims["email"].(string)
	if payload.Subject == "" || email == "" {
		return nil, ErrInvalidToken
	}

	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &Profile{
		Subject: payload.Subject,
		Email:   email,
		Name:    name,
		Avatar:  picture,
	}, nil
}
