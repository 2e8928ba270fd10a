// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tarifusta/tarifusta/internal/models"
)

const recipeCols = `id, user_id, external_id, title, description,
	ingredients, steps, meal_type, image_url, created_at`

// CreateRecipe inserts a recipe. Returns ErrDuplicate when a recipe
// with the same (user, external id) already exists.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recipes (user_id, external_id, title, description, ingredients, steps, meal_type, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recipe.UserID, recipe.ExternalID, recipe.Title, recipe.Description,
		recipe.Ingredients, recipe.Steps, recipe.MealType, recipe.ImageURL, recipe.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", wrapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	recipe.ID = id
	return nil
}

// GetRecipeByID retrieves a recipe by id, scoped to its owner. A recipe
// owned by someone else is indistinguishable from a missing one.
func (r *Repository) GetRecipeByID(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.GetContext(ctx, &recipe,
		`SELECT `+recipeCols+` FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &recipe, nil
}

// GetRecipeByExternalID retrieves a recipe by its generation-scoped id,
// scoped to its owner.
func (r *Repository) GetRecipeByExternalID(ctx context.Context, userID int64, externalID string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.GetContext(ctx, &recipe,
		`SELECT `+recipeCols+` FROM recipes WHERE external_id = ? AND user_id = ?`, externalID, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &recipe, nil
}

// ListRecipes returns all recipes of a user, newest first.
func (r *Repository) ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.SelectContext(ctx, &recipes,
		`SELECT `+recipeCols+` FROM recipes WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return recipes, nil
}

// ListRecipesPage returns a page of recipes, newest first.
func (r *Repository) ListRecipesPage(ctx context.Context, userID int64, limit, skip int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.SelectContext(ctx, &recipes,
		`SELECT `+recipeCols+` FROM recipes WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, skip)
	if err != nil {
		return nil, wrapError(err)
	}
	return recipes, nil
}

// CountRecipes returns the number of recipes a user owns.
func (r *Repository) CountRecipes(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM recipes WHERE user_id = ?`, userID)
	if err != nil {
		return 0, wrapError(err)
	}
	return count, nil
}

// DeleteRecipe removes a recipe by id, scoped to its owner. Returns
// ErrNotFound when the id does not exist or belongs to another user.
func (r *Repository) DeleteRecipe(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
