// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers of the API.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tarifusta/tarifusta/internal/services/account"
	"github.com/tarifusta/tarifusta/internal/services/otp"
	"github.com/tarifusta/tarifusta/internal/services/recipes"
	"github.com/tarifusta/tarifusta/internal/services/session"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	codes    *otp.Service
	accounts *account.Service
	sessions *session.Service
	recipes  *recipes.Service
}

// New creates a new Handlers instance.
func New(codes *otp.Service, accounts *account.Service, sessions *session.Service, rec *recipes.Service) *Handlers {
	return &Handlers{
		codes:    codes,
		accounts: accounts,
		sessions: sessions,
		recipes:  rec,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
