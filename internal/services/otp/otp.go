// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package otp issues and verifies single-use login and account-deletion
// codes.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/tarifusta/tarifusta/internal/mail"
	"github.com/tarifusta/tarifusta/internal/models"
	"github.com/tarifusta/tarifusta/internal/repository"
)

// CodeTTL is how long an issued code stays valid.
const CodeTTL = 10 * time.Minute

// ErrInvalidCode is returned whenever a code cannot be accepted:
// unknown account, no outstanding code, mismatch, expiry or reuse. The
// reason is deliberately opaque so login never reveals whether an email
// exists.
var ErrInvalidCode = errors.New("invalid code")

// Service manages the OTP lifecycle. Login and deletion codes share the
// mechanics but are independently keyed and never interchangeable.
type Service struct {
	repo   *repository.Repository
	sender mail.Sender
	now    func() time.Time
}

// New creates an OTP service.
func New(repo *repository.Repository, sender mail.Sender) *Service {
	return &Service{repo: repo, sender: sender, now: time.Now}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateCode returns a uniformly random 6-digit code. Leading zeros
// are preserved: "012345" is a valid code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}
	return fmt.Sprintf("%06d", n), nil
}

// RequestLoginCode stores a fresh login code for the account (creating
// the account if the email is unseen) and dispatches it by mail. The
// code is persisted before dispatch: a mail failure surfaces as an
// error but leaves the stored code valid.
func (s *Service) RequestLoginCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.repo.CreateUser(ctx, email)
	}
	if err != nil {
		return fmt.Errorf("loading account: %w", err)
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}
	if err := s.repo.SetLoginCode(ctx, user.ID, code, s.now().Add(CodeTTL)); err != nil {
		return fmt.Errorf("storing login code: %w", err)
	}

	return s.sender.SendLoginCode(ctx, email, code)
}

// VerifyLoginCode consumes a login code and returns the account. A
// second verify with the same code fails: the consume is conditional on
// the stored value, so only one request can win.
func (s *Service) VerifyLoginCode(ctx context.Context, email, code string) (*models.User, error) {
	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}

	outstanding := user.LoginOTP()
	if outstanding == nil || !outstanding.Matches(code, s.now()) {
		return nil, ErrInvalidCode
	}

	consumed, err := s.repo.ConsumeLoginCode(ctx, user.ID, code)
	if err != nil {
		return nil, fmt.Errorf("consuming login code: %w", err)
	}
	if !consumed {
		return nil, ErrInvalidCode
	}

	return user, nil
}

// RequestDeleteCode stores and mails an account-deletion code. Unlike
// login, an unknown email is reported as not found: the flow is already
// account-scoped.
func (s *Service) RequestDeleteCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("loading account: %w", err)
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}
	if err := s.repo.SetDeleteCode(ctx, user.ID, code, s.now().Add(CodeTTL)); err != nil {
		return fmt.Errorf("storing delete code: %w", err)
	}

	return s.sender.SendDeleteCode(ctx, email, code)
}

// VerifyDeleteCode consumes an account-deletion code and returns the
// account to be deleted.
func (s *Service) VerifyDeleteCode(ctx context.Context, email, code string) (*models.User, error) {
	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("loading account: %w", err)
	}

	outstanding := user.DeleteOTP()
	if outstanding == nil || !outstanding.Matches(code, s.now()) {
		return nil, ErrInvalidCode
	}

	consumed, err := s.repo.ConsumeDeleteCode(ctx, user.ID, code)
	if err != nil {
		return nil, fmt.Errorf("consuming delete code: %w", err)
	}
	if !consumed {
		return nil, ErrInvalidCode
	}

	return user, nil
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
