// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// Gemini generates recipes with the Gemini API, constrained to a JSON
// response schema.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini-backed generator.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generation API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// GenerateRecipe asks the model for a recipe draft matching the given
// ingredients and category.
func (g *Gemini) GenerateRecipe(ctx context.Context, ingredients, mealTypeID string, isAlternative bool) (*Draft, error) {
	mealType := LookupMealType(mealTypeID)
	prompt := buildPrompt(ingredients, mealType, isAlternative)

	resp, err := g.client.Models.GenerateContent(ctx, geminiModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":       {Type: genai.TypeString},
				"description": {Type: genai.TypeString},
				"ingredients": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"steps":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"title", "description", "ingredients", "steps"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generating recipe: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("model returned empty response")
	}

	var draft Draft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return nil, fmt.Errorf("model returned non-JSON output: %w", err)
	}

	draft.ID = uuid.NewString()
	draft.MealType = mealType.Title
	draft.CreatedAt = time.Now()
	return &draft, nil
}

// GenerateImage builds the image URL for a generated recipe. The image
// provider renders on fetch, so this never blocks on the provider.
func (g *Gemini) GenerateImage(_ context.Context, title, description string) (string, error) {
	return ImageURL(title, description), nil
}

func buildPrompt(ingredients string, mealType MealType, isAlternative bool) string {
	var b strings.Builder
	b.WriteString(`You are an expert Turkish Chef (Usta), deeply knowledgeable in traditional Anatolian/Ottoman cuisine as well as modern Turkish gastronomy.

INPUT INGREDIENTS: ` + ingredients + `
SELECTED CATEGORY: ` + mealType.Title + ` (` + mealType.Description + `)

GUIDELINES FOR TURKISH CHEF:
1. PRIORITY: TRADITIONAL MATCH (Geleneksel Önceliği): Before being creative, check if the input ingredients strongly match a classic/traditional Turkish dish (Yöresel Yemek). If the ingredients clearly point to a known classic (e.g., Eggplant+Minced Meat -> Karnıyarık, Lentils+Bulgur -> Ezogelin), YOU MUST SUGGEST THAT CLASSIC DISH FIRST. Do not invent a new name if a cultural classic fits perfectly.
2. Palate Compatibility: The recipe MUST appeal to Turkish taste buds. Prioritize flavor profiles involving tomato paste (salça), roasting, stewing, or olive oil (zeytinyağlı) techniques if appropriate.
3. Ingredient Accessibility: Prioritize ingredients commonly found in Turkish kitchens and markets. Assume basic pantry items (salça, onion, garlic, olive oil, flour, spices) are available.
4. Language: Output must be in fluent, warm, and professional Turkish.

CONSTRAINTS:
- The recipe MUST strictly fit the '` + mealType.Title + `' category.
- If category is 'Hızlı Çözüm', the total preparation and cooking time MUST be under 30 minutes.
`)
	if isAlternative {
		b.WriteString("- RE-ROLL INSTRUCTION: The user did not like the previous suggestion. Create a COMPLETELY DIFFERENT recipe. Change the cooking method or the main flavor profile. Do not suggest the same dish again.\n")
	}
	b.WriteString("\nOutput JSON only.")
	return b.String()
}
