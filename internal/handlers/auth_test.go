// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarifusta/tarifusta/internal/generation"
	"github.com/tarifusta/tarifusta/internal/handlers"
	"github.com/tarifusta/tarifusta/internal/identity"
	"github.com/tarifusta/tarifusta/internal/repository"
	"github.com/tarifusta/tarifusta/internal/services/account"
	"github.com/tarifusta/tarifusta/internal/services/draftcache"
	"github.com/tarifusta/tarifusta/internal/services/otp"
	"github.com/tarifusta/tarifusta/internal/services/quota"
	"github.com/tarifusta/tarifusta/internal/services/recipes"
	"github.com/tarifusta/tarifusta/internal/services/session"
	"github.com/tarifusta/tarifusta/internal/testutil"
)

type fixture struct {
	handlers *handlers.Handlers
	repo     *repository.Repository
	sender   *testutil.MailRecorder
	sessions *session.Service
	verifier *testutil.StubVerifier
	echo     *echo.Echo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithGenerator(t, &testutil.StubGenerator{})
}

func newFixtureWithGenerator(t *testing.T, generator generation.Generator) *fixture {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	sender := testutil.NewMailRecorder()
	codes := otp.New(repo, sender)
	sessions, err := session.New("test-secret")
	require.NoError(t, err)
	verifier := &testutil.StubVerifier{}
	accounts := account.New(repo, verifier, codes)
	cache := draftcache.New(0)
	t.Cleanup(cache.Stop)
	recipeSvc := recipes.New(repo, quota.New(repo, 3), cache, generator)

	return &fixture{
		handlers: handlers.New(codes, accounts, sessions, recipeSvc),
		repo:     repo,
		sender:   sender,
		sessions: sessions,
		verifier: verifier,
		echo:     echo.New(),
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodGet, "/api/health", nil)

	err := f.handlers.Health(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestLoginCode(t *testing.T) {
	f := newFixture(t)
	body := strings.NewReader(`{"email":"ayse@example.com"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/request-code", body)

	err := f.handlers.RequestLoginCode(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, f.sender.LoginCodes["ayse@example.com"])
}

func TestRequestLoginCode_InvalidEmail(t *testing.T) {
	f := newFixture(t)

	for _, payload := range []string{`{"email":""}`, `{"email":"not-an-email"}`, `{}`} {
		c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/request-code", strings.NewReader(payload))

		err := f.handlers.RequestLoginCode(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload: %s", payload)
	}
}

func TestRequestLoginCode_MailFailure(t *testing.T) {
	f := newFixture(t)
	f.sender.Err = assert.AnError
	body := strings.NewReader(`{"email":"ayse@example.com"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/request-code", body)

	err := f.handlers.RequestLoginCode(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestVerifyLoginCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	codes := otp.New(f.repo, f.sender)
	require.NoError(t, codes.RequestLoginCode(ctx, "ayse@example.com"))
	code := f.sender.LoginCodes["ayse@example.com"]

	body := strings.NewReader(`{"email":"ayse@example.com","code":"` + code + `"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/verify-code", body)

	err := f.handlers.VerifyLoginCode(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "ayse@example.com", resp.User.Email)

	// The token verifies against the same session service
	id, err := f.sessions.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ayse@example.com", id.Email)
}

func TestVerifyLoginCode_WrongCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	codes := otp.New(f.repo, f.sender)
	require.NoError(t, codes.RequestLoginCode(ctx, "ayse@example.com"))

	body := strings.NewReader(`{"email":"ayse@example.com","code":"000000"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/verify-code", body)

	err := f.handlers.VerifyLoginCode(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyLoginCode_BadInput(t *testing.T) {
	f := newFixture(t)

	for _, payload := range []string{
		`{"email":"ayse@example.com","code":"123"}`,       // too short
		`{"email":"ayse@example.com","code":"123456789"}`, // too long
		`{"email":"bogus","code":"123456"}`,
	} {
		c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/verify-code", strings.NewReader(payload))

		err := f.handlers.VerifyLoginCode(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload: %s", payload)
	}
}

func TestGoogleLogin(t *testing.T) {
	f := newFixture(t)
	f.verifier.Profile = &identity.Profile{
		Subject: "subject-1",
		Email:   "ayse@example.com",
		Name:    "Ayşe",
	}

	body := strings.NewReader(`{"idToken":"valid-token"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/google", body)

	err := f.handlers.GoogleLogin(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Name *string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User.Name)
	assert.Equal(t, "Ayşe", *resp.User.Name)
}

func TestGoogleLogin_MissingToken(t *testing.T) {
	f := newFixture(t)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/google", strings.NewReader(`{}`))

	err := f.handlers.GoogleLogin(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleLogin_InvalidToken(t *testing.T) {
	f := newFixture(t)
	f.verifier.Err = identity.ErrInvalidToken

	body := strings.NewReader(`{"idToken":"forged"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/google", body)

	err := f.handlers.GoogleLogin(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestDeleteCode_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	body := strings.NewReader(`{"email":"nobody@example.com"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/request-delete-code", body)

	err := f.handlers.RequestDeleteCode(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, f.repo, "ayse@example.com")
	codes := otp.New(f.repo, f.sender)
	require.NoError(t, codes.RequestDeleteCode(ctx, "ayse@example.com"))
	code := f.sender.DeleteCodes["ayse@example.com"]

	body := strings.NewReader(`{"email":"ayse@example.com","code":"` + code + `"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/delete-account", body)

	err := f.handlers.DeleteAccount(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, loadErr := f.repo.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, loadErr, repository.ErrNotFound)
}

func TestDeleteAccount_WrongCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testutil.NewTestUser(t, f.repo, "ayse@example.com")
	codes := otp.New(f.repo, f.sender)
	require.NoError(t, codes.RequestDeleteCode(ctx, "ayse@example.com"))

	body := strings.NewReader(`{"email":"ayse@example.com","code":"000000"}`)
	c, rec := testutil.NewEchoContext(f.echo, http.MethodPost, "/api/auth/delete-account", body)

	err := f.handlers.DeleteAccount(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
