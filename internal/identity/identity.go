// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package identity defines the federated-login collaborator boundary.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when a federated assertion fails
// verification or lacks a usable identity. The reason is deliberately
// opaque to callers.
var ErrInvalidToken = errors.New("invalid token")

// Profile is the verified identity asserted by the external provider.
// Subject and Email are always present; Name and Avatar may be empty.
type Profile struct {
	Subject string
	Email   string
	Name    string
	Avatar  string
}

// Verifier validates an externally issued identity assertion.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Profile, error)
}
