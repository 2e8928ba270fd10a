// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tarifusta/tarifusta/internal/models"
)

const userCols = `id, google_subject, email, name, avatar,
	login_code, login_code_expires_at, delete_code, delete_code_expires_at,
	daily_gen_count, daily_gen_date, created_at`

// CreateUser creates a new user for an email-only (OTP) account.
func (r *Repository) CreateUser(ctx context.Context, email string) (*models.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, created_at) VALUES (?, ?)`,
		email, time.Now())
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", wrapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by id.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by (already normalized) email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userCols+` FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByGoogleSubject retrieves a user by federated subject.
func (r *Repository) GetUserByGoogleSubject(ctx context.Context, subject string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userCols+` FROM users WHERE google_subject = ?`, subject)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UpsertFederatedUser finds or creates a user by federated subject. The
// subject is the durable join key; email, name and avatar are refreshed
// to the latest asserted values on every login. When the asserted email
// already belongs to an email-only account, the subject is attached to
// that account instead of creating a second one.
func (r *Repository) UpsertFederatedUser(ctx context.Context, subject, email string, name, avatar *string) (*models.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, avatar = ? WHERE google_subject = ?`,
		email, name, avatar, subject)
	if err != nil {
		return nil, fmt.Errorf("update federated user: %w", wrapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	if n == 0 {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO users (google_subject, email, name, avatar, created_at) VALUES (?, ?, ?, ?, ?)`,
			subject, email, name, avatar, time.Now())
		if err != nil {
			switch {
			case errors.Is(wrapError(err), ErrDuplicate):
				// Either a concurrent login won the insert race, or the
				// email belongs to an existing OTP account. Attach the
				// subject to the email account; the subject-keyed read
				// below resolves both cases.
				if _, attachErr := r.db.ExecContext(ctx,
					`UPDATE users SET google_subject = ?, name = ?, avatar = ? WHERE email = ? AND google_subject IS NULL`,
					subject, name, avatar, email); attachErr != nil {
					return nil, fmt.Errorf("attach federated subject: %w", wrapError(attachErr))
				}
			default:
				return nil, fmt.Errorf("insert federated user: %w", wrapError(err))
			}
		}
	}

	return r.GetUserByGoogleSubject(ctx, subject)
}

// SetLoginCode stores a new login OTP, superseding any previous one.
func (r *Repository) SetLoginCode(ctx context.Context, userID int64, code string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET login_code = ?, login_code_expires_at = ? WHERE id = ?`,
		code, expiresAt, userID)
	return wrapError(err)
}

// ConsumeLoginCode clears the login OTP if it still holds the given
// value. Returns false when another request consumed or superseded the
// code first.
func (r *Repository) ConsumeLoginCode(ctx context.Context, userID int64, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET login_code = NULL, login_code_expires_at = NULL WHERE id = ? AND login_code = ?`,
		userID, code)
	if err != nil {
		return false, wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetDeleteCode stores a new account-deletion OTP.
func (r *Repository) SetDeleteCode(ctx context.Context, userID int64, code string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET delete_code = ?, delete_code_expires_at = ? WHERE id = ?`,
		code, expiresAt, userID)
	return wrapError(err)
}

// ConsumeDeleteCode clears the deletion OTP if it still holds the given
// value.
func (r *Repository) ConsumeDeleteCode(ctx context.Context, userID int64, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET delete_code = NULL, delete_code_expires_at = NULL WHERE id = ? AND delete_code = ?`,
		userID, code)
	if err != nil {
		return false, wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateQuota persists the user's quota window.
func (r *Repository) UpdateQuota(ctx context.Context, userID int64, date string, count int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET daily_gen_date = ?, daily_gen_count = ? WHERE id = ?`,
		date, count, userID)
	return wrapError(err)
}

// DeleteUser removes a user and all recipes they own in one
// transaction. The schema-level ON DELETE CASCADE is a second line of
// defense; the explicit delete keeps the cascade visible.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("delete user recipes: %w", wrapError(err))
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", wrapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}
