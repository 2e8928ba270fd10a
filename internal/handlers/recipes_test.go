// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package handlers_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarifusta/tarifusta/internal/auth"
	"github.com/tarifusta/tarifusta/internal/services/session"
	"github.com/tarifusta/tarifusta/internal/testutil"
)

func setIdentity(c echo.Context, userID int64, email string) {
	id := &session.Identity{UserID: userID, Email: email}
	c.SetRequest(c.Request().WithContext(auth.SetIdentity(c.Request().Context(), id)))
}

func TestGenerateRecipe(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")

	body := strings.NewReader(`{"ingredients":"tavuk, bulgur","mealTypeId":"ana-yemek"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/generate-recipe", body)
	setIdentity(c, user.ID, user.Email)

	err := f.handlers.GenerateRecipe(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var draft struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		ImageURL string `json:"imageUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.NotEmpty(t, draft.ID)
	assert.NotEmpty(t, draft.Title)
	assert.NotEmpty(t, draft.ImageURL)
}

func TestGenerateRecipe_InvalidInput(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")

	for _, payload := range []string{`{}`, `{"ingredients":"tavuk"}`, `{"mealTypeId":"ana-yemek"}`} {
		c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/generate-recipe", strings.NewReader(payload))
		setIdentity(c, user.ID, user.Email)

		err := f.handlers.GenerateRecipe(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload: %s", payload)
	}
}

func TestGenerateRecipe_QuotaExhausted(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")

	for range 3 {
		body := strings.NewReader(`{"ingredients":"tavuk","mealTypeId":"ana-yemek"}`)
		c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/generate-recipe", body)
		setIdentity(c, user.ID, user.Email)
		require.NoError(t, f.handlers.GenerateRecipe(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	body := strings.NewReader(`{"ingredients":"tavuk","mealTypeId":"ana-yemek"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/generate-recipe", body)
	setIdentity(c, user.ID, user.Email)

	err := f.handlers.GenerateRecipe(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp struct {
		Error     string `json:"error"`
		Remaining int    `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.Zero(t, resp.Remaining)
}

func TestGenerateRecipe_GeneratorFailure(t *testing.T) {
	f := newFixtureWithGenerator(t, &testutil.StubGenerator{Err: assert.AnError})
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")

	body := strings.NewReader(`{"ingredients":"tavuk","mealTypeId":"ana-yemek"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/generate-recipe", body)
	setIdentity(c, user.ID, user.Email)

	err := f.handlers.GenerateRecipe(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSaveRecipe(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")

	body := strings.NewReader(`{
		"id": "gen-1",
		"title": "Menemen",
		"description": "Kahvaltılık klasik",
		"ingredients": ["yumurta", "domates"],
		"steps": ["doğra", "pişir"],
		"mealType": "Kahvaltı",
		"imageUrl": "https://example.com/img.png"
	}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/save-recipe", body)
	setIdentity(c, user.ID, user.Email)

	err := f.handlers.SaveRecipe(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK       bool   `json:"ok"`
		RecipeID string `json:"recipeId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.RecipeID)
}

func TestSaveRecipe_Idempotent(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")

	save := func() string {
		body := strings.NewReader(`{"id":"gen-1","title":"Menemen"}`)
		c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/save-recipe", body)
		setIdentity(c, user.ID, user.Email)
		require.NoError(t, f.handlers.SaveRecipe(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			RecipeID string `json:"recipeId"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.RecipeID
	}

	first := save()
	second := save()

	assert.Equal(t, first, second)
}

func TestSaveRecipe_MissingTitle(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")

	body := strings.NewReader(`{"id":"gen-1"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/save-recipe", body)
	setIdentity(c, user.ID, user.Email)

	err := f.handlers.SaveRecipe(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMyRecipes_Unpaged(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")
	base := time.Now().Add(-time.Hour)
	testutil.NewTestRecipe(t, f.repo, user.ID, "Eski", base)
	testutil.NewTestRecipe(t, f.repo, user.ID, "Yeni", base.Add(time.Minute))

	c, rec := testutil.NewEchoContext(f.echo, http.MethodGet, "/api/my-recipes", nil)
	setIdentity(c, user.ID, user.Email)

	err := f.handlers.ListMyRecipes(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var items []struct {
		ID    string `json:"_id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Yeni", items[0].Title)
	assert.NotEmpty(t, items[0].ID)
}

func TestListMyRecipes_Paged(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")
	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"Bir", "İki", "Üç", "Dört", "Beş"} {
		testutil.NewTestRecipe(t, f.repo, user.ID, title, base.Add(time.Duration(i)*time.Minute))
	}

	c, rec := testutil.NewEchoContext(f.echo, http.MethodGet, "/api/my-recipes?limit=2&skip=0", nil)
	setIdentity(c, user.ID, user.Email)

	err := f.handlers.ListMyRecipes(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
		HasMore bool `json:"hasMore"`
		Total   int  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.True(t, resp.HasMore)
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, "Beş", resp.Items[0].Title)
}

func TestListMyRecipes_LastPage(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")
	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		testutil.NewTestRecipe(t, f.repo, user.ID, "Tarif", base.Add(time.Duration(i)*time.Minute))
	}

	c, rec := testutil.NewEchoContext(f.echo, http.MethodGet, "/api/my-recipes?limit=2&skip=4", nil)
	setIdentity(c, user.ID, user.Email)

	err := f.handlers.ListMyRecipes(c)

	require.NoError(t, err)

	var resp struct {
		Items   []json.RawMessage `json:"items"`
		HasMore bool              `json:"hasMore"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.False(t, resp.HasMore)
}

func TestGetRecipe(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")
	recipe := testutil.NewTestRecipe(t, f.repo, user.ID, "Menemen", time.Now())

	c, rec := testutil.NewEchoContext(f.echo, http.MethodGet, "/api/recipe/"+strconv.FormatInt(recipe.ID, 10), nil)
	setIdentity(c, user.ID, user.Email)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(recipe.ID, 10))

	err := f.handlers.GetRecipe(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID    string `json:"_id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, strconv.FormatInt(recipe.ID, 10), resp.ID)
	assert.Equal(t, "Menemen", resp.Title)
}

func TestGetRecipe_NotFound(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")

	c, rec := testutil.NewEchoContext(f.echo, http.MethodGet, "/api/recipe/999", nil)
	setIdentity(c, user.ID, user.Email)
	c.SetParamNames("id")
	c.SetParamValues("999")

	err := f.handlers.GetRecipe(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRecipe(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")
	recipe := testutil.NewTestRecipe(t, f.repo, user.ID, "Menemen", time.Now())
	id := strconv.FormatInt(recipe.ID, 10)

	c, rec := testutil.NewEchoContext(f.echo, http.MethodDelete, "/api/recipe/"+id, nil)
	setIdentity(c, user.ID, user.Email)
	c.SetParamNames("id")
	c.SetParamValues(id)

	err := f.handlers.DeleteRecipe(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestDeleteRecipe_NotFound(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")

	c, rec := testutil.NewEchoContext(f.echo, http.MethodDelete, "/api/recipe/999", nil)
	setIdentity(c, user.ID, user.Email)
	c.SetParamNames("id")
	c.SetParamValues("999")

	err := f.handlers.DeleteRecipe(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
