package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/loganravin4/lokedex/internal/shared"
	"golang.org/x/oauth2"
)

// mockExchanger is a test double for the bootstrap flow's service slice.
type mockExchanger struct {
	token *oauth2.Token
	err   error

	authCalls     int
	exchangeCalls int
	lastCode      string
	lastRedirect  string
}

func (m *mockExchanger) AuthCodeURL(redirectURI string) string {
	m.authCalls++
	m.lastRedirect = redirectURI
	return "https://accounts.spotify.com/authorize?redirect_uri=" + redirectURI
}

func (m *mockExchanger) ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	m.exchangeCalls++
	m.lastCode = code
	m.lastRedirect = redirectURI
	return m.token, m.err
}

var bootstrapCreds = shared.SpotifyConfig{ClientID: "cid", ClientSecret: "secret"}

func TestBootstrapAuth(t *testing.T) {
	t.Run("Missing Client ID", func(t *testing.T) {
		handler := NewBootstrapHandler(shared.SpotifyConfig{}, &mockExchanger{}, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spotify/auth", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "SPOTIFY_CLIENT_ID") {
			t.Errorf("expected instructive error body, got %q", rec.Body.String())
		}
	})

	t.Run("Redirects To Spotify", func(t *testing.T) {
		exchanger := &mockExchanger{}
		handler := NewBootstrapHandler(bootstrapCreds, exchanger, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/auth", nil)
		req.Host = "example.com"

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Errorf("expected 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); !strings.Contains(loc, "accounts.spotify.com") {
			t.Errorf("expected redirect to Spotify, got %s", loc)
		}
		if exchanger.lastRedirect != "http://example.com/api/spotify/callback" {
			t.Errorf("unexpected redirect URI %s", exchanger.lastRedirect)
		}
	})

	t.Run("Rewrites Localhost", func(t *testing.T) {
		exchanger := &mockExchanger{}
		handler := NewBootstrapHandler(bootstrapCreds, exchanger, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/auth", nil)
		req.Host = "localhost:4321"

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if exchanger.lastRedirect != "http://127.0.0.1:4321/api/spotify/callback" {
			t.Errorf("expected loopback rewrite, got %s", exchanger.lastRedirect)
		}
	})

	t.Run("Honors Forwarded Proto", func(t *testing.T) {
		exchanger := &mockExchanger{}
		handler := NewBootstrapHandler(bootstrapCreds, exchanger, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/auth", nil)
		req.Host = "music.example.com"
		req.Header.Set("X-Forwarded-Proto", "https")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if exchanger.lastRedirect != "https://music.example.com/api/spotify/callback" {
			t.Errorf("expected https redirect URI, got %s", exchanger.lastRedirect)
		}
	})
}

func TestBootstrapCallback(t *testing.T) {
	t.Run("Authorization Denied", func(t *testing.T) {
		exchanger := &mockExchanger{}
		handler := NewBootstrapHandler(bootstrapCreds, exchanger, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spotify/callback?error=access_denied", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if exchanger.exchangeCalls != 0 {
			t.Errorf("denied callback must not attempt exchange, got %d calls", exchanger.exchangeCalls)
		}
		if !strings.Contains(rec.Body.String(), "access_denied") {
			t.Error("expected error page to name the upstream error")
		}
	})

	t.Run("Missing Code", func(t *testing.T) {
		exchanger := &mockExchanger{}
		handler := NewBootstrapHandler(bootstrapCreds, exchanger, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spotify/callback?state=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if exchanger.exchangeCalls != 0 {
			t.Error("missing code must not attempt exchange")
		}
		if !strings.Contains(rec.Body.String(), "state") {
			t.Error("expected diagnostic page to list the received query params")
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		handler := NewBootstrapHandler(shared.SpotifyConfig{ClientID: "cid"}, &mockExchanger{}, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spotify/callback?code=abc", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("Exchange Failure", func(t *testing.T) {
		exchanger := &mockExchanger{err: errors.New("invalid_grant")}
		handler := NewBootstrapHandler(bootstrapCreds, exchanger, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spotify/callback?code=bad", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "refresh") {
			t.Error("failed exchange must not render a token page")
		}

		select {
		case <-handler.Result():
			t.Error("failed exchange must not complete the flow")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Successful Exchange", func(t *testing.T) {
		token := &oauth2.Token{AccessToken: "at", RefreshToken: "refresh_abc"}
		exchanger := &mockExchanger{token: token}
		handler := NewBootstrapHandler(bootstrapCreds, exchanger, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/spotify/callback?code=good", nil)
		req.Host = "localhost:4321"

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "refresh_abc") {
			t.Error("expected success page to display the refresh token")
		}
		if exchanger.lastCode != "good" {
			t.Errorf("unexpected exchanged code %s", exchanger.lastCode)
		}
		if exchanger.lastRedirect != "http://127.0.0.1:4321/api/spotify/callback" {
			t.Errorf("exchange must use the rewritten redirect URI, got %s", exchanger.lastRedirect)
		}

		select {
		case result := <-handler.Result():
			if result.Token.RefreshToken != "refresh_abc" {
				t.Errorf("unexpected token in result: %+v", result.Token)
			}
		case <-time.After(time.Second):
			t.Fatal("expected the flow to complete")
		}
	})

	t.Run("Retry After Failure", func(t *testing.T) {
		exchanger := &mockExchanger{err: errors.New("transient")}
		handler := NewBootstrapHandler(bootstrapCreds, exchanger, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spotify/callback?code=first", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected first attempt to fail with 500, got %d", rec.Code)
		}

		exchanger.err = nil
		exchanger.token = &oauth2.Token{RefreshToken: "second_try"}

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spotify/callback?code=second", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected retry to succeed, got %d", rec.Code)
		}

		select {
		case result := <-handler.Result():
			if result.Token.RefreshToken != "second_try" {
				t.Errorf("unexpected token: %+v", result.Token)
			}
		case <-time.After(time.Second):
			t.Fatal("expected the retried flow to complete")
		}
	})
}
