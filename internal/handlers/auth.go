// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tarifusta/tarifusta/internal/models"
	"github.com/tarifusta/tarifusta/internal/repository"
	"github.com/tarifusta/tarifusta/internal/services/account"
	"github.com/tarifusta/tarifusta/internal/services/otp"
)

// accountPayload is the public account projection returned on login.
type accountPayload struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  accountPayload `json:"user"`
}

func loginPayload(token string, user *models.User) loginResponse {
	return loginResponse{
		Token: token,
		User: accountPayload{
			ID:     strconv.FormatInt(user.ID, 10),
			Email:  user.Email,
			Name:   user.Name,
			Avatar: user.Avatar,
		},
	}
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// RequestLoginCode issues a login OTP for the given email, creating the
// account on first sight. The code is stored before the mail goes out,
// so a delivery failure leaves a requestable account behind.
func (h *Handlers) RequestLoginCode(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || !validEmail(req.Email) {
		return errorJSON(c, http.StatusBadRequest, "Invalid email")
	}

	if err := h.codes.RequestLoginCode(c.Request().Context(), req.Email); err != nil {
		return collaboratorError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// VerifyLoginCode exchanges a valid OTP for a session token.
func (h *Handlers) VerifyLoginCode(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.Bind(&req); err != nil || !validEmail(req.Email) || len(req.Code) < 4 || len(req.Code) > 8 {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}

	user, err := h.codes.VerifyLoginCode(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			return errorJSON(c, http.StatusUnauthorized, "Invalid code")
		}
		return writeError(c, err)
	}

	token, err := h.sessions.Issue(account.Projection(user))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loginPayload(token, user))
}

// GoogleLogin exchanges a Google ID token for a session token,
// creating or refreshing the account keyed by the federated subject.
func (h *Handlers) GoogleLogin(c echo.Context) error {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing idToken")
	}

	user, err := h.accounts.LoginWithFederatedToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return writeError(c, err)
	}

	token, err := h.sessions.Issue(account.Projection(user))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loginPayload(token, user))
}

// RequestDeleteCode issues an account-deletion OTP. Unknown emails get
// a 404: this flow is already account-scoped, unlike login.
func (h *Handlers) RequestDeleteCode(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || !validEmail(req.Email) {
		return errorJSON(c, http.StatusBadRequest, "Invalid email")
	}

	if err := h.codes.RequestDeleteCode(c.Request().Context(), req.Email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Not found")
		}
		return collaboratorError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// DeleteAccount verifies the deletion OTP and removes the account with
// all of its recipes.
func (h *Handlers) DeleteAccount(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.Bind(&req); err != nil || !validEmail(req.Email) || req.Code == "" {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}

	if err := h.accounts.Delete(c.Request().Context(), req.Email, req.Code); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
