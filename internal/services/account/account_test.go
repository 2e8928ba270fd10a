// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarifusta/tarifusta/internal/identity"
	"github.com/tarifusta/tarifusta/internal/models"
	"github.com/tarifusta/tarifusta/internal/repository"
	"github.com/tarifusta/tarifusta/internal/services/account"
	"github.com/tarifusta/tarifusta/internal/services/otp"
	"github.com/tarifusta/tarifusta/internal/testutil"
)

func newService(t *testing.T, verifier identity.Verifier) (*account.Service, *repository.Repository, *testutil.MailRecorder) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	sender := testutil.NewMailRecorder()
	codes := otp.New(repo, sender)
	return account.New(repo, verifier, codes), repo, sender
}

func TestLoginWithFederatedToken_CreatesAccount(t *testing.T) {
	verifier := &testutil.StubVerifier{Profile: &identity.Profile{
		Subject: "subject-1",
		Email:   "Ayse@Example.com",
		Name:    "Ayşe",
		Avatar:  "https://example.com/a.png",
	}}
	svc, _, _ := newService(t, verifier)

	user, err := svc.LoginWithFederatedToken(context.Background(), "id-token")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ayse@example.com", user.Email)
	assert.Equal(t, "Ayşe", user.DisplayName())
}

func TestLoginWithFederatedToken_SameSubjectSameAccount(t *testing.T) {
	verifier := &testutil.StubVerifier{Profile: &identity.Profile{
		Subject: "subject-1",
		Email:   "ayse@example.com",
	}}
	svc, _, _ := newService(t, verifier)
	ctx := context.Background()

	first, err := svc.LoginWithFederatedToken(ctx, "id-token")
	require.NoError(t, err)
	second, err := svc.LoginWithFederatedToken(ctx, "id-token")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestLoginWithFederatedToken_AttachesToOTPAccount(t *testing.T) {
	verifier := &testutil.StubVerifier{Profile: &identity.Profile{
		Subject: "subject-1",
		Email:   "ayse@example.com",
	}}
	svc, repo, _ := newService(t, verifier)
	ctx := context.Background()

	existing := testutil.NewTestUser(t, repo, "ayse@example.com")

	user, err := svc.LoginWithFederatedToken(ctx, "id-token")

	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
}

func TestLoginWithFederatedToken_InvalidToken(t *testing.T) {
	verifier := &testutil.StubVerifier{Err: identity.ErrInvalidToken}
	svc, _, _ := newService(t, verifier)

	_, err := svc.LoginWithFederatedToken(context.Background(), "bad-token")

	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestDelete(t *testing.T) {
	svc, repo, sender := newService(t, &testutil.StubVerifier{})
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ayse@example.com")
	testutil.NewTestRecipe(t, repo, user.ID, "Menemen", time.Now())

	codes := otp.New(repo, sender)
	require.NoError(t, codes.RequestDeleteCode(ctx, "ayse@example.com"))
	code := sender.DeleteCodes["ayse@example.com"]

	require.NoError(t, svc.Delete(ctx, "ayse@example.com", code))

	_, err := repo.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	count, err := repo.CountRecipes(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDelete_WrongCode(t *testing.T) {
	svc, repo, sender := newService(t, &testutil.StubVerifier{})
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ayse@example.com")
	codes := otp.New(repo, sender)
	require.NoError(t, codes.RequestDeleteCode(ctx, "ayse@example.com"))

	err := svc.Delete(ctx, "ayse@example.com", "000000")

	assert.ErrorIs(t, err, otp.ErrInvalidCode)

	// Account survives
	_, loadErr := repo.GetUserByID(ctx, user.ID)
	assert.NoError(t, loadErr)
}

func TestProjection(t *testing.T) {
	name := "Ayşe"
	user := &models.User{ID: 7, Email: "ayse@example.com", Name: &name}

	id := account.Projection(user)

	assert.Equal(t, int64(7), id.UserID)
	assert.Equal(t, "ayse@example.com", id.Email)
	assert.Equal(t, "Ayşe", id.Name)
	assert.Empty(t, id.Avatar)
}
