// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package models

import "time"

// Recipe is a durably saved recipe. ExternalID is the id the client
// already saw from generation; at most one recipe exists per
// (user, external id) pair.
type Recipe struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64      `db:"id" json:"-"`
	UserID      int64      `db:"user_id" json:"-"`
	ExternalID  string     `db:"external_id" json:"externalId"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Ingredients StringList `db:"ingredients" json:"ingredients"`
	Steps       StringList `db:"steps" json:"steps"`
	MealType    string     `db:"meal_type" json:"mealType"`
	ImageURL    *string    `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}
