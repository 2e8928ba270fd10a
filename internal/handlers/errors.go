// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tarifusta/tarifusta/internal/identity"
	"github.com/tarifusta/tarifusta/internal/repository"
	"github.com/tarifusta/tarifusta/internal/services/otp"
	"github.com/tarifusta/tarifusta/internal/services/quota"
)

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// writeError maps service errors to HTTP responses. Unclassified errors
// are logged and reported as a generic internal error.
func writeError(c echo.Context, err error) error {
	var limitErr *quota.LimitError
	switch {
	case errors.As(err, &limitErr):
		return c.JSON(http.StatusTooManyRequests, map[string]any{
			"error":     limitErr.Error(),
			"remaining": 0,
		})
	case errors.Is(err, otp.ErrInvalidCode):
		return errorJSON(c, http.StatusUnauthorized, "Invalid code")
	case errors.Is(err, identity.ErrInvalidToken):
		return errorJSON(c, http.StatusUnauthorized, "Token verification failed")
	case errors.Is(err, repository.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "Not found")
	default:
		slog.Error("request failed", "path", c.Path(), "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Internal error")
	}
}

// collaboratorError reports a failed external call (mail, generation)
// with a best-effort message. Never retried.
func collaboratorError(c echo.Context, err error) error {
	slog.Error("collaborator call failed", "path", c.Path(), "error", err)
	return errorJSON(c, http.StatusBadGateway, err.Error())
}
