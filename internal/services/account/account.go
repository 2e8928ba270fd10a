// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package account orchestrates federated login and verified account
// deletion.
package account

import (
	"context"
	"fmt"

	"github.com/tarifusta/tarifusta/internal/identity"
	"github.com/tarifusta/tarifusta/internal/models"
	"github.com/tarifusta/tarifusta/internal/repository"
	"github.com/tarifusta/tarifusta/internal/services/otp"
	"github.com/tarifusta/tarifusta/internal/services/session"
)

// Service handles account lifecycle beyond plain OTP login.
type Service struct {
	repo     *repository.Repository
	verifier identity.Verifier
	codes    *otp.Service
}

// New creates an account service.
func New(repo *repository.Repository, verifier identity.Verifier, codes *otp.Service) *Service {
	return &Service{repo: repo, verifier: verifier, codes: codes}
}

// LoginWithFederatedToken exchanges an externally verified identity
// assertion for an internal account, creating it on first login and
// refreshing email, name and avatar on every subsequent one.
func (s *Service) LoginWithFederatedToken(ctx context.Context, idToken string) (*models.User, error) {
	profile, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	email := otp.NormalizeEmail(profile.Email)
	var name, avatar *string
	if profile.Name != "" {
		name = &profile.Name
	}
	if profile.Avatar != "" {
		avatar = &profile.Avatar
	}

	user, err := s.repo.UpsertFederatedUser(ctx, profile.Subject, email, name, avatar)
	if err != nil {
		return nil, fmt.Errorf("upserting federated account: %w", err)
	}
	return user, nil
}

// Delete verifies an account-deletion code and removes the account with
// all recipes it owns. Sessions issued before deletion stay
// cryptographically valid but no longer resolve to any data.
func (s *Service) Delete(ctx context.Context, email, code string) error {
	user, err := s.codes.VerifyDeleteCode(ctx, email, code)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}

// Projection builds the session identity for a user.
func Projection(user *models.User) session.Identity {
	return session.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.DisplayName(),
		Avatar: user.AvatarURL(),
	}
}
