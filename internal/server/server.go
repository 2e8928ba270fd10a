// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package server wires the application together and runs the HTTP server.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tarifusta/tarifusta/internal/config"
	"github.com/tarifusta/tarifusta/internal/database"
	"github.com/tarifusta/tarifusta/internal/generation"
	"github.com/tarifusta/tarifusta/internal/handlers"
	"github.com/tarifusta/tarifusta/internal/identity"
	"github.com/tarifusta/tarifusta/internal/mail"
	appmiddleware "github.com/tarifusta/tarifusta/internal/middleware"
	"github.com/tarifusta/tarifusta/internal/repository"
	"github.com/tarifusta/tarifusta/internal/services/account"
	"github.com/tarifusta/tarifusta/internal/services/draftcache"
	"github.com/tarifusta/tarifusta/internal/services/otp"
	"github.com/tarifusta/tarifusta/internal/services/quota"
	"github.com/tarifusta/tarifusta/internal/services/recipes"
	"github.com/tarifusta/tarifusta/internal/services/session"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	repo := repository.New(db)

	// Outbound mail
	sender, err := mail.NewSMTP(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to configure mail: %w", err)
	}

	// Sessions and login codes
	sessions, err := session.New(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to configure sessions: %w", err)
	}
	codes := otp.New(repo, sender)
	verifier := identity.NewGoogleVerifier(
		cfg.Auth.GoogleClientID,
		cfg.Auth.GoogleAndroidClientID,
		cfg.Auth.GoogleIOSClientID,
	)
	accounts := account.New(repo, verifier, codes)

	// Recipe generation
	var generator generation.Generator
	if cfg.Generation.Disabled {
		slog.Warn("recipe generation disabled, serving fixture recipes")
		generator = generation.Static{}
	} else {
		generator, err = generation.NewGemini(ctx, cfg.Generation.APIKey)
		if err != nil {
			return fmt.Errorf("failed to configure generation: %w", err)
		}
	}

	drafts := draftcache.New(draftcache.DefaultTTL)
	defer drafts.Stop()

	limits := quota.New(repo, cfg.Generation.DailyLimit)
	recipeSvc := recipes.New(repo, limits, drafts, generator)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, handlers.New(codes, accounts, sessions, recipeSvc), sessions)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers, sessions *session.Service) {
	api := e.Group("/api")

	api.GET("/health", h.Health)
	api.POST("/auth/google", h.GoogleLogin)
	api.POST("/auth/request-code", h.RequestLoginCode)
	api.POST("/auth/verify-code", h.VerifyLoginCode)
	api.POST("/auth/request-delete-code", h.RequestDeleteCode)
	api.POST("/auth/delete-account", h.DeleteAccount)

	protected := api.Group("", appmiddleware.RequireSession(sessions))
	protected.POST("/generate-recipe", h.GenerateRecipe)
	protected.POST("/save-recipe", h.SaveRecipe)
	protected.GET("/my-recipes", h.ListMyRecipes)
	protected.GET("/recipe/:id", h.GetRecipe)
	protected.DELETE("/recipe/:id", h.DeleteRecipe)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		// HTTP-01 challenge and redirect server on :80
		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
