// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package recipes orchestrates recipe generation and the saved-recipe
// store.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/tarifusta/tarifusta/internal/generation"
	"github.com/tarifusta/tarifusta/internal/models"
	"github.com/tarifusta/tarifusta/internal/repository"
	"github.com/tarifusta/tarifusta/internal/services/draftcache"
	"github.com/tarifusta/tarifusta/internal/services/quota"
)

const (
	// MaxPageSize caps the paged list limit.
	MaxPageSize = 50
	// DefaultPageSize applies when a paged request gives no usable limit.
	DefaultPageSize = 5
)

// Service ties the quota tracker, the generation collaborator, the
// draft cache and the durable store together.
type Service struct {
	repo      *repository.Repository
	quota     *quota.Service
	cache     *draftcache.Cache
	generator generation.Generator
}

// New creates a recipes service.
func New(repo *repository.Repository, q *quota.Service, cache *draftcache.Cache, generator generation.Generator) *Service {
	return &Service{repo: repo, quota: q, cache: cache, generator: generator}
}

// Generate spends quota, produces a draft and parks it in the cache so
// the client can re-fetch it by id before deciding to save. An image
// failure degrades to the default image, never to an error.
func (s *Service) Generate(ctx context.Context, userID int64, ingredients, mealTypeID string, isAlternative bool) (*generation.Draft, error) {
	if err := s.quota.CheckAndConsume(ctx, userID); err != nil {
		return nil, err
	}

	draft, err := s.generator.GenerateRecipe(ctx, ingredients, mealTypeID, isAlternative)
	if err != nil {
		return nil, fmt.Errorf("recipe generation failed: %w", err)
	}

	imageURL, err := s.generator.GenerateImage(ctx, draft.Title, draft.Description)
	if err != nil {
		slog.Warn("image generation failed, using default image", "error", err)
		imageURL = generation.DefaultImageURL
	}
	draft.ImageURL = imageURL

	s.cache.Put(draft.ID, userID, draft)
	return draft, nil
}

// SaveInput are the client-provided fields of a save request.
type SaveInput struct { //nolint:govet // fieldalignment not critical
	ExternalID  string
	Title       string
	Description string
	Ingredients []string
	Steps       []string
	MealType    string
	ImageURL    string
}

// Save persists a recipe once per (account, external id). A repeated
// save returns the existing record's id without touching its fields,
// and a concurrent duplicate that loses the insert race re-reads the
// winner instead of surfacing a conflict.
func (s *Service) Save(ctx context.Context, userID int64, in SaveInput) (int64, error) {
	externalID := in.ExternalID
	if externalID == "" {
		externalID = uuid.NewString()
	}

	existing, err := s.repo.GetRecipeByExternalID(ctx, userID, externalID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("looking up recipe: %w", err)
	}

	recipe := &models.Recipe{
		UserID:      userID,
		ExternalID:  externalID,
		Title:       in.Title,
		Description: in.Description,
		Ingredients: in.Ingredients,
		Steps:       in.Steps,
		MealType:    in.MealType,
	}
	if in.ImageURL != "" {
		recipe.ImageURL = &in.ImageURL
	}

	err = s.repo.CreateRecipe(ctx, recipe)
	if errors.Is(err, repository.ErrDuplicate) {
		winner, rereadErr := s.repo.GetRecipeByExternalID(ctx, userID, externalID)
		if rereadErr != nil {
			return 0, fmt.Errorf("re-reading recipe after duplicate: %w", rereadErr)
		}
		return winner.ID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("saving recipe: %w", err)
	}
	return recipe.ID, nil
}

// List returns all recipes of the account, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]models.Recipe, error) {
	return s.repo.ListRecipes(ctx, userID)
}

// Page is one page of a paged list.
type Page struct {
	Items   []models.Recipe
	Total   int
	HasMore bool
}

// ListPage returns a page of recipes. The limit is clamped to
// [1, MaxPageSize] and skip to >= 0.
func (s *Service) ListPage(ctx context.Context, userID int64, limit, skip int) (*Page, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if skip < 0 {
		skip = 0
	}

	items, err := s.repo.ListRecipesPage(ctx, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountRecipes(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:   items,
		Total:   total,
		HasMore: skip+len(items) < total,
	}, nil
}

// Get resolves a recipe id: draft cache first, then the durable store
// by internal id, then by external id. Anything else is not found.
func (s *Service) Get(ctx context.Context, userID int64, id string) (*models.Recipe, error) {
	if draft, ok := s.cache.Get(id, userID); ok {
		return draftRecord(userID, draft), nil
	}

	if internalID, err := strconv.ParseInt(id, 10, 64); err == nil {
		recipe, err := s.repo.GetRecipeByID(ctx, userID, internalID)
		if err == nil {
			return recipe, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	return s.repo.GetRecipeByExternalID(ctx, userID, id)
}

// Delete removes a recipe by internal or external id, owner-scoped.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	if internalID, err := strconv.ParseInt(id, 10, 64); err == nil {
		err := s.repo.DeleteRecipe(ctx, userID, internalID)
		if err == nil || !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	recipe, err := s.repo.GetRecipeByExternalID(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteRecipe(ctx, userID, recipe.ID)
}

// draftRecord materializes a cached draft as an unsaved recipe record.
// The internal id stays zero until the client saves it.
func draftRecord(userID int64, draft *generation.Draft) *models.Recipe {
	recipe := &models.Recipe{
		UserID:      userID,
		ExternalID:  draft.ID,
		Title:       draft.Title,
		Description: draft.Description,
		Ingredients: draft.Ingredients,
		Steps:       draft.Steps,
		MealType:    draft.MealType,
		CreatedAt:   draft.CreatedAt,
	}
	if draft.ImageURL != "" {
		imageURL := draft.ImageURL
		recipe.ImageURL = &imageURL
	}
	return recipe
}
