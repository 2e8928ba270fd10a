// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package generation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Static returns a fixed recipe draft. Used when AI generation is
// disabled (development, demo builds); quota and caching still apply.
type Static struct{}

// GenerateRecipe returns the fixture draft for the requested category.
func (Static) GenerateRecipe(_ context.Context, _, mealTypeID string, _ bool) (*Draft, error) {
	return &Draft{
		ID:          uuid.NewString(),
		Title:       "Pratik Tavuklu Bulgur",
		Description: "Evdeki temel malzemelerle kısa sürede hazırlanan, taneli bulgur ve sotelenmiş tavukla lezzetli bir ana yemek.",
		Ingredients: []string{
			"Tavuk göğsü (300g)",
			"Bulgur (1 su bardağı)",
			"Soğan (1 adet)",
			"Domates salçası (1 yemek kaşığı)",
			"Zeytinyağı (2 yemek kaşığı)",
			"Tuz, karabiber",
			"İsteğe bağlı: pul biber",
		},
		Steps: []string{
			"Soğanı küçük doğrayın, zeytinyağında 2-3 dakika soteleyin.",
			"Küçük doğranmış tavukları ekleyip rengi dönene kadar pişirin.",
			"Salçayı ekleyip kısa süre kavurun, tuz ve karabiberle tatlandırın.",
			"Bulguru ekleyin, karıştırın ve üzerini 1 parmak geçecek kadar sıcak su ekleyin.",
			"Kısık ateşte suyunu çekene kadar pişirin, 5 dakika dinlendirin ve servis edin.",
		},
		MealType:  LookupMealType(mealTypeID).Title,
		ImageURL:  DefaultImageURL,
		CreatedAt: time.Now(),
	}, nil
}

// GenerateImage returns the fixture image.
func (Static) GenerateImage(_ context.Context, _, _ string) (string, error) {
	return DefaultImageURL, nil
}
