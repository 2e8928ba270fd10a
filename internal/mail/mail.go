// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package mail delivers one-time codes to users.
package mail

import "context"

// Sender dispatches OTP mail. Delivery may fail; callers surface the
// failure to the user but never retry automatically.
type Sender interface {
	SendLoginCode(ctx context.Context, to, code string) error
	SendDeleteCode(ctx context.Context, to, code string) error
}
