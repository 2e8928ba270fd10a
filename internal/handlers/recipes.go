// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tarifusta/tarifusta/internal/auth"
	"github.com/tarifusta/tarifusta/internal/models"
	"github.com/tarifusta/tarifusta/internal/services/quota"
	"github.com/tarifusta/tarifusta/internal/services/recipes"
)

// recipePayload is the full recipe record returned to the client. ID is
// the internal id for saved recipes and the generation id for drafts
// that were never saved.
type recipePayload struct { //nolint:govet // fieldalignment not critical
	ID          string    `json:"_id"`
	ExternalID  string    `json:"externalId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
	MealType    string    `json:"mealType"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type recipeSummary struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
}

func recipeID(r *models.Recipe) string {
	if r.ID != 0 {
		return strconv.FormatInt(r.ID, 10)
	}
	return r.ExternalID
}

func toRecipePayload(r *models.Recipe) recipePayload {
	return recipePayload{
		ID:          recipeID(r),
		ExternalID:  r.ExternalID,
		Title:       r.Title,
		Description: r.Description,
		Ingredients: r.Ingredients,
		Steps:       r.Steps,
		MealType:    r.MealType,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt,
	}
}

func toRecipeSummaries(items []models.Recipe) []recipeSummary {
	out := make([]recipeSummary, len(items))
	for i := range items {
		out[i] = recipeSummary{
			ID:          recipeID(&items[i]),
			Title:       items[i].Title,
			Description: items[i].Description,
			CreatedAt:   items[i].CreatedAt,
			ImageURL:    items[i].ImageURL,
		}
	}
	return out
}

// GenerateRecipe produces a fresh recipe draft for the authenticated
// account, gated by the daily quota. The draft stays fetchable by id
// from the cache for an hour without being saved.
func (h *Handlers) GenerateRecipe(c echo.Context) error {
	var req struct {
		Ingredients   string `json:"ingredients"`
		MealTypeID    string `json:"mealTypeId"`
		IsAlternative bool   `json:"isAlternative"`
	}
	if err := c.Bind(&req); err != nil || req.Ingredients == "" || req.MealTypeID == "" {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}

	id := auth.GetIdentity(c.Request().Context())
	draft, err := h.recipes.Generate(c.Request().Context(), id.UserID, req.Ingredients, req.MealTypeID, req.IsAlternative)
	if err != nil {
		var limitErr *quota.LimitError
		if errors.As(err, &limitErr) {
			return writeError(c, err)
		}
		return collaboratorError(c, err)
	}
	return c.JSON(http.StatusOK, draft)
}

// SaveRecipe persists a draft. Saving the same external id twice
// returns the first record's id without overwriting anything.
func (h *Handlers) SaveRecipe(c echo.Context) error {
	var req struct { //nolint:govet // fieldalignment not critical
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Ingredients []string `json:"ingredients"`
		Steps       []string `json:"steps"`
		MealType    string   `json:"mealType"`
		ImageURL    string   `json:"imageUrl"`
	}
	if err := c.Bind(&req); err != nil || req.Title == "" {
		return errorJSON(c, http.StatusBadRequest, "Invalid recipe")
	}

	id := auth.GetIdentity(c.Request().Context())
	savedID, err := h.recipes.Save(c.Request().Context(), id.UserID, recipes.SaveInput{
		ExternalID:  req.ID,
		Title:       req.Title,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
		MealType:    req.MealType,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":       true,
		"recipeId": strconv.FormatInt(savedID, 10),
	})
}

// ListMyRecipes lists the account's saved recipes, newest first. With a
// limit parameter the response is paged and carries total and has-more.
func (h *Handlers) ListMyRecipes(c echo.Context) error {
	id := auth.GetIdentity(c.Request().Context())
	ctx := c.Request().Context()

	limitParam := c.QueryParam("limit")
	if limitParam == "" {
		items, err := h.recipes.List(ctx, id.UserID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, toRecipeSummaries(items))
	}

	limit, err := strconv.Atoi(limitParam)
	if err != nil {
		limit = recipes.DefaultPageSize
	}
	skip, err := strconv.Atoi(c.QueryParam("skip"))
	if err != nil {
		skip = 0
	}

	page, err := h.recipes.ListPage(ctx, id.UserID, limit, skip)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"items":   toRecipeSummaries(page.Items),
		"hasMore": page.HasMore,
		"total":   page.Total,
	})
}

// GetRecipe fetches a recipe by id: draft cache first, then the durable
// store, then the external-id fallback.
func (h *Handlers) GetRecipe(c echo.Context) error {
	id := auth.GetIdentity(c.Request().Context())
	recipe, err := h.recipes.Get(c.Request().Context(), id.UserID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toRecipePayload(recipe))
}

// DeleteRecipe removes a saved recipe owned by the account.
func (h *Handlers) DeleteRecipe(c echo.Context) error {
	id := auth.GetIdentity(c.Request().Context())
	if err := h.recipes.Delete(c.Request().Context(), id.UserID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
