// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package quota enforces the per-account daily generation ceiling.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/tarifusta/tarifusta/internal/models"
	"github.com/tarifusta/tarifusta/internal/repository"
)

// DefaultDailyLimit applies when no limit is configured.
const DefaultDailyLimit = 3

// LimitError is returned when an account has exhausted today's
// generations. It carries the configured limit for client display.
type LimitError struct {
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("günlük öneri limitine ulaşıldı (%d)", e.Limit)
}

// Service tracks per-day generation counts with lazy day rollover: no
// background job resets counters at midnight, the first check of a new
// day does.
type Service struct {
	repo  *repository.Repository
	limit int
	now   func() time.Time
}

// New creates a quota service with the given daily limit.
func New(repo *repository.Repository, limit int) *Service {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Service{repo: repo, limit: limit, now: time.Now}
}

// Limit returns the configured daily limit.
func (s *Service) Limit() int {
	return s.limit
}

// CheckAndConsume spends one generation for the account, or returns a
// LimitError without spending when the ceiling is reached.
//
// The check-then-increment is not transactionally isolated against
// concurrent requests from the same account: two simultaneous calls can
// both read the same pre-increment count and both pass. The consequence
// is a soft over-allowance of one, accepted for a soft daily limit.
func (s *Service) CheckAndConsume(ctx context.Context, userID int64) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading account: %w", err)
	}

	today := s.now().Format("2006-01-02")
	window := user.Quota()
	if window.Date != today {
		window = models.QuotaWindow{Date: today}
	}

	if window.Count >= s.limit {
		return &LimitError{Limit: s.limit}
	}

	if err := s.repo.UpdateQuota(ctx, userID, today, window.Count+1); err != nil {
		return fmt.Errorf("updating quota: %w", err)
	}
	return nil
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
