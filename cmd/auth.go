package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/loganravin4/lokedex/internal/server"
	"github.com/loganravin4/lokedex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Auth runs the OAuth bootstrap flow against a temporary local server.
//
// Starts the server, opens the browser at /api/spotify/auth, and waits for the
// callback to complete. The refresh token is rendered only in the browser; the
// operator copies it into persisted configuration by hand.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if r.config.Spotify.ClientID == "" || r.config.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml or the environment", shared.ErrMissingCredentials)
	}

	bootstrap := server.NewBootstrapHandler(r.config.Spotify, r.spotify, r.logger)
	router := server.NewBasicRouter()
	router.Handler(bootstrap)

	addr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting OAuth bootstrap server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	// Spotify rejects "localhost" redirect targets, so the browser is pointed
	// at the loopback address directly.
	authURL := fmt.Sprintf("http://127.0.0.1:%d/api/spotify/auth", r.config.Server.Port)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlain("⚠ Could not open browser automatically.\n")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var flowErr error

	select {
	case <-bootstrap.Result():
		// Exchange completed; the token is displayed in the browser.
	case err := <-serverErrors:
		flowErr = fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		flowErr = fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		flowErr = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if flowErr != nil {
		return flowErr
	}

	r.writePlain("✓ Authorization successful\n")
	r.writePlain("Copy the refresh token shown in the browser into config.toml (spotify.refresh_token)\n")
	r.writePlain("or the SPOTIFY_REFRESH_TOKEN environment variable, then restart the server.\n")

	return nil
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Obtain a Spotify refresh token via the OAuth bootstrap flow",
		Action: r.Auth,
	}
}
