// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package generation defines the recipe-generation collaborator
// boundary. The core never inspects provider responses directly; it
// only sees the typed Draft or an error.
package generation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"time"
)

// DefaultImageURL is served when image generation fails. A failed image
// never fails the overall generation.
const DefaultImageURL = "https://images.unsplash.com/photo-1550547660-d9450f859349?w=1200&q=80&auto=format&fit=crop"

// Draft is a freshly generated recipe that has not been saved yet. ID
// is generation-scoped and distinct from any persisted id.
type Draft struct { //nolint:govet // fieldalignment: readability over optimization
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
	MealType    string    `json:"mealType"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Generator produces recipe drafts and image URLs. Implementations may
// fail or time out; callers bound them with the request context and
// convert failures to error responses, never retry loops.
type Generator interface {
	GenerateRecipe(ctx context.Context, ingredients, mealTypeID string, isAlternative bool) (*Draft, error)
	GenerateImage(ctx context.Context, title, description string) (string, error)
}

// MealType is a selectable recipe category.
type MealType struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MealTypes is the category catalog offered by the app.
var MealTypes = []MealType{
	{ID: "kahvalti", Title: "Kahvaltı", Description: "Güne başlangıç için doyurucu kahvaltılıklar"},
	{ID: "ana-yemek", Title: "Ana Yemek", Description: "Sofranın yıldızı, doyurucu ana yemekler"},
	{ID: "corba", Title: "Çorba", Description: "İçinizi ısıtan geleneksel çorbalar"},
	{ID: "salata-meze", Title: "Salata & Meze", Description: "Hafif salatalar ve sofra mezeler"},
	{ID: "tatli", Title: "Tatlı", Description: "Şerbetli ve sütlü tatlılar"},
	{ID: "hizli-cozum", Title: "Hızlı Çözüm", Description: "30 dakikanın altında pratik tarifler"},
}

// LookupMealType resolves a category id. Unknown ids fall back to a
// generic label, matching the client's lenient contract.
func LookupMealType(id string) MealType {
	for _, m := range MealTypes {
		if m.ID == id {
			return m
		}
	}
	return MealType{ID: id, Title: "Yemek"}
}

// ImageURL builds a pollinations.ai image URL for a recipe. The random
// seed makes re-rolls produce a different image for the same dish.
func ImageURL(title, description string) string {
	prompt := fmt.Sprintf(
		"delicious professional food photography of %s, described as: %s, 4k, highly detailed, studio lighting, appetizing, culinary magazine style, rustic wooden table",
		title, description)
	seed := rand.IntN(100000)
	return fmt.Sprintf("https://image.pollinations.ai/prompt/%s?width=1200&height=900&seed=%d",
		url.QueryEscape(prompt), seed)
}
