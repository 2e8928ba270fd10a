// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package auth carries the verified session identity through the
// request context.
package auth

import (
	"context"

	"github.com/tarifusta/tarifusta/internal/services/session"
)

type identityKey struct{}

// SetIdentity stores the verified identity in the context.
func SetIdentity(ctx context.Context, id *session.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// GetIdentity retrieves the verified identity, or nil when the request
// is unauthenticated.
func GetIdentity(ctx context.Context) *session.Identity {
	id, _ := ctx.Value(identityKey{}).(*session.Identity)
	return id
}
