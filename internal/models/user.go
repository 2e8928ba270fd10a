// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package models

import "time"

// User is an account record. Accounts are created either on first
// federated login (google_subject set) or on first OTP request for an
// unseen email (google_subject NULL).
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID                  int64      `db:"id" json:"id"`
	GoogleSubject       *string    `db:"google_subject" json:"-"`
	Email               string     `db:"email" json:"email"`
	Name                *string    `db:"name" json:"name"`
	Avatar              *string    `db:"avatar" json:"avatar"`
	LoginCode           *string    `db:"login_code" json:"-"`
	LoginCodeExpiresAt  *time.Time `db:"login_code_expires_at" json:"-"`
	DeleteCode          *string    `db:"delete_code" json:"-"`
	DeleteCodeExpiresAt *time.Time `db:"delete_code_expires_at" json:"-"`
	DailyGenCount       int        `db:"daily_gen_count" json:"-"`
	DailyGenDate        *string    `db:"daily_gen_date" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// OneTimeCode is a single-use numeric code with an absolute expiry.
// Code and expiry are always set and cleared together on the user row.
type OneTimeCode struct {
	Code      string
	ExpiresAt time.Time
}

// Matches reports whether the given code is an exact match and the
// expiry has not passed. No normalization: "012345" != "12345".
func (c OneTimeCode) Matches(code string, now time.Time) bool {
	return c.Code != "" && c.Code == code && !now.After(c.ExpiresAt)
}

// LoginOTP returns the outstanding login code, or nil if none is set.
func (u *User) LoginOTP() *OneTimeCode {
	if u.LoginCode == nil || u.LoginCodeExpiresAt == nil {
		return nil
	}
	return &OneTimeCode{Code: *u.LoginCode, ExpiresAt: *u.LoginCodeExpiresAt}
}

// DeleteOTP returns the outstanding account-deletion code, or nil.
func (u *User) DeleteOTP() *OneTimeCode {
	if u.DeleteCode == nil || u.DeleteCodeExpiresAt == nil {
		return nil
	}
	return &OneTimeCode{Code: *u.DeleteCode, ExpiresAt: *u.DeleteCodeExpiresAt}
}

// QuotaWindow is the per-calendar-day generation counter. The count is
// only meaningful when Date equals the current day; a mismatch implies
// an implicit reset to zero before use.
type QuotaWindow struct {
	Date  string // YYYY-MM-DD, local
	Count int
}

// Quota returns the user's quota window. Date is empty when no
// generation has ever been counted.
func (u *User) Quota() QuotaWindow {
	w := QuotaWindow{Count: u.DailyGenCount}
	if u.DailyGenDate != nil {
		w.Date = *u.DailyGenDate
	}
	return w
}

// DisplayName returns the name claim value, empty when unset.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

// AvatarURL returns the avatar claim value, empty when unset.
func (u *User) AvatarURL() string {
	if u.Avatar == nil {
		return ""
	}
	return *u.Avatar
}
