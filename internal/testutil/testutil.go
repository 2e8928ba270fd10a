// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/tarifusta/tarifusta/internal/database"
	"github.com/tarifusta/tarifusta/internal/generation"
	"github.com/tarifusta/tarifusta/internal/identity"
	"github.com/tarifusta/tarifusta/internal/models"
	"github.com/tarifusta/tarifusta/internal/repository"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a test user in the database.
func NewTestUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), email)
	require.NoError(t, err)
	return user
}

// NewTestRecipe creates a test recipe with an explicit creation time so
// ordering tests stay deterministic.
func NewTestRecipe(t *testing.T, repo *repository.Repository, userID int64, title string, createdAt time.Time) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		UserID:      userID,
		ExternalID:  uuid.NewString(),
		Title:       title,
		Description: "test description",
		Ingredients: models.StringList{"su", "tuz"},
		Steps:       models.StringList{"karıştır", "pişir"},
		MealType:    "Ana Yemek",
		CreatedAt:   createdAt,
	}
	err := repo.CreateRecipe(context.Background(), recipe)
	require.NoError(t, err)
	return recipe
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// MailRecorder is a mail.Sender that records sent codes instead of
// dispatching them.
type MailRecorder struct {
	mu          sync.Mutex
	LoginCodes  map[string]string // email -> last code
	DeleteCodes map[string]string
	Err         error // returned from both send methods when set
}

// NewMailRecorder creates an empty recorder.
func NewMailRecorder() *MailRecorder {
	return &MailRecorder{
		LoginCodes:  make(map[string]string),
		DeleteCodes: make(map[string]string),
	}
}

func (m *MailRecorder) SendLoginCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.LoginCodes[to] = code
	return nil
}

func (m *MailRecorder) SendDeleteCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.DeleteCodes[to] = code
	return nil
}

// StubGenerator is a generation.Generator with scripted results.
type StubGenerator struct {
	Draft    *generation.Draft
	Err      error
	ImageURL string
	ImageErr error
}

func (g *StubGenerator) GenerateRecipe(_ context.Context, _, mealTypeID string, _ bool) (*generation.Draft, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	if g.Draft != nil {
		draft := *g.Draft
		return &draft, nil
	}
	return &generation.Draft{
		ID:          uuid.NewString(),
		Title:       "Test Tarifi",
		Description: "test",
		Ingredients: []string{"su"},
		Steps:       []string{"pişir"},
		MealType:    generation.LookupMealType(mealTypeID).Title,
		CreatedAt:   time.Now(),
	}, nil
}

func (g *StubGenerator) GenerateImage(_ context.Context, _, _ string) (string, error) {
	if g.ImageErr != nil {
		return "", g.ImageErr
	}
	if g.ImageURL != "" {
		return g.ImageURL, nil
	}
	return generation.DefaultImageURL, nil
}

// StubVerifier is an identity.Verifier with a scripted profile.
type StubVerifier struct {
	Profile *identity.Profile
	Err     error
}

func (v *StubVerifier) Verify(_ context.Context, _ string) (*identity.Profile, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	return v.Profile, nil
}
