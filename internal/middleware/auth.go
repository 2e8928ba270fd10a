// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package middleware provides echo middleware for the API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tarifusta/tarifusta/internal/auth"
	"github.com/tarifusta/tarifusta/internal/services/session"
)

// RequireSession verifies the bearer session token and injects the
// identity it carries into the request context. The identity is the
// only account context handlers get; it is not re-checked against the
// store.
func RequireSession(sessions *session.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			token := strings.TrimPrefix(header, "Bearer ")
			id, err := sessions.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			}

			ctx := auth.SetIdentity(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
