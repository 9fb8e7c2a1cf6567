package server

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/loganravin4/lokedex/internal/shared"
	"golang.org/x/oauth2"
)

// Exchanger is the slice of the Spotify service the bootstrap flow needs.
type Exchanger interface {
	AuthCodeURL(redirectURI string) string
	ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
}

// OAuthResult contains the result of a completed bootstrap flow.
type OAuthResult struct {
	Token *oauth2.Token
}

// BootstrapHandler implements the operator-facing OAuth bootstrap flow:
// /api/spotify/auth redirects to Spotify, /api/spotify/callback exchanges the
// authorization code and renders the refresh token in a one-time page.
//
// Unlike the data endpoints, failures here surface as visible 400/500 pages
// because a human operator is present to read and act on them.
type BootstrapHandler struct {
	creds      shared.SpotifyConfig
	service    Exchanger
	logger     *log.Logger
	resultChan chan OAuthResult
	once       sync.Once
}

// NewBootstrapHandler creates a bootstrap handler for the given credentials and service.
func NewBootstrapHandler(creds shared.SpotifyConfig, service Exchanger, logger *log.Logger) *BootstrapHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &BootstrapHandler{
		creds:      creds,
		service:    service,
		logger:     logger,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *BootstrapHandler) Routes() []string {
	return []string{"/api/spotify/auth", "/api/spotify/callback"}
}

// ServeHTTP dispatches to the auth or callback step by path.
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/spotify/auth":
		h.auth(w, r)
	case "/api/spotify/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

// auth builds the authorization URL and redirects the operator to Spotify.
func (h *BootstrapHandler) auth(w http.ResponseWriter, r *http.Request) {
	if h.creds.ClientID == "" {
		http.Error(w, "SPOTIFY_CLIENT_ID not found in configuration. Add it to config.toml or the environment.", http.StatusInternalServerError)
		return
	}

	redirectURI := callbackURI(r)
	http.Redirect(w, r, h.service.AuthCodeURL(redirectURI), http.StatusFound)
}

// callback receives code or error from Spotify and exchanges the code for tokens.
func (h *BootstrapHandler) callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	redirectURI := callbackURI(r)

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Warn("authorization denied", "error", errParam)
		renderError(w, errorPageData{
			Error:       errParam,
			Description: query.Get("error_description"),
			RedirectURI: redirectURI,
		})
		return
	}

	code := query.Get("code")
	if code == "" {
		params := map[string]string{}
		for key, values := range query {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		renderNoCode(w, noCodePageData{
			RequestURL:  r.URL.String(),
			RedirectURI: redirectURI,
			Params:      params,
		})
		return
	}

	if h.creds.ClientID == "" || h.creds.ClientSecret == "" {
		http.Error(w, "SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET not found in configuration.", http.StatusInternalServerError)
		return
	}

	token, err := h.service.ExchangeCode(r.Context(), code, redirectURI)
	if err != nil {
		h.logger.Error("token exchange failed", "error", err)
		http.Error(w, "Failed to exchange code for tokens: "+err.Error(), http.StatusInternalServerError)
		return
	}

	renderSuccess(w, successPageData{
		RefreshToken: token.RefreshToken,
		ClientID:     h.creds.ClientID,
	})

	h.notify(OAuthResult{Token: token})
}

// notify sends the result through the channel (only once).
func (h *BootstrapHandler) notify(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel that receives the completed flow's token.
//
// The channel receives exactly one result, on the first successful exchange;
// failed attempts keep the flow open so the operator can retry.
func (h *BootstrapHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

// callbackURI derives this deployment's callback address from the request.
// Spotify rejects the bare "localhost" hostname, so it is rewritten to its
// loopback numeric address.
func callbackURI(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	uri := scheme + "://" + r.Host + "/api/spotify/callback"
	return strings.Replace(uri, "localhost", "127.0.0.1", 1)
}
