// Spotify API implementation of [Resolver]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/loganravin4/lokedex/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	nowPlayingEndpoint   = "/me/player/currently-playing"
	recentTracksEndpoint = "/me/player/recently-played?limit=5"
	topArtistsEndpoint   = "/me/top/artists?time_range=short_term&limit=5"
)

// spotifyScopes are the read-only scopes the bootstrap flow requests.
var spotifyScopes = []string{
	"user-read-currently-playing",
	"user-read-recently-played",
	"user-top-read",
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// SpotifyCurrentlyPlaying represents the currently-playing payload.
// Item is a pointer because the API omits it when nothing is playing.
type SpotifyCurrentlyPlaying struct {
	IsPlaying  bool          `json:"is_playing"`
	ProgressMS int           `json:"progress_ms"`
	Item       *SpotifyTrack `json:"item"`
}

// SpotifyRecentlyPlayed represents the recently-played history payload.
type SpotifyRecentlyPlayed struct {
	Items []struct {
		Track SpotifyTrack `json:"track"`
	} `json:"items"`
}

// SpotifyTopArtists represents the top-artists payload.
type SpotifyTopArtists struct {
	Items []SpotifyArtist `json:"items"`
}

// SpotifyService implements [Resolver] against the Spotify Web API.
//
// Credentials are an explicit, immutable value supplied at construction;
// the access token is re-exchanged on every resolution and never cached.
type SpotifyService struct {
	creds      shared.SpotifyConfig
	httpClient *http.Client
	limiter    *rate.Limiter

	// Overridable in tests to point at httptest servers.
	authURL  string
	tokenURL string
	baseURL  string
}

// NewSpotifyService creates a Spotify service with the given credentials.
//
// Missing credential values are not an error here; each resolver call
// reports [shared.ErrMissingCredentials] so a misconfigured deployment
// degrades to absence instead of failing at startup.
func NewSpotifyService(creds shared.SpotifyConfig, client *http.Client) *SpotifyService {
	if client == nil {
		client = http.DefaultClient
	}

	return &SpotifyService{
		creds:      creds,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
		authURL:    spotifyAuthURL,
		tokenURL:   spotifyTokenURL,
		baseURL:    spotifyBaseURL,
	}
}

// oauthConfig builds the OAuth2 config for the given redirect target.
func (s *SpotifyService) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.creds.ClientID,
		ClientSecret: s.creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.authURL,
			TokenURL:  s.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// AuthCodeURL returns the authorization URL for the bootstrap flow.
func (s *SpotifyService) AuthCodeURL(redirectURI string) string {
	return s.oauthConfig(redirectURI).AuthCodeURL("", oauth2.SetAuthURLParam("show_dialog", "false"))
}

// ExchangeCode exchanges an authorization code for tokens (authorization_code grant).
// The returned token carries the long-lived refresh token.
func (s *SpotifyService) ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauthConfig(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return token, nil
}

// ExchangeToken turns the stored refresh credential into a short-lived access
// token (refresh_token grant). Exactly one renewal attempt per call.
func (s *SpotifyService) ExchangeToken(ctx context.Context) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	source := s.oauthConfig("").TokenSource(ctx, &oauth2.Token{RefreshToken: s.creds.RefreshToken})

	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	return token.AccessToken, nil
}

// NowPlaying resolves the currently playing track, or (nil, nil) when nothing is playing.
func (s *SpotifyService) NowPlaying(ctx context.Context) (*Track, error) {
	if !s.creds.Complete() {
		return nil, fmt.Errorf("%w: client id, client secret, and refresh token are required", shared.ErrMissingCredentials)
	}

	accessToken, err := s.ExchangeToken(ctx)
	if err != nil {
		return nil, err
	}

	var playing SpotifyCurrentlyPlaying
	status, err := s.doGet(ctx, accessToken, nowPlayingEndpoint, &playing)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNoContent {
		return nil, nil
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}
	if playing.Item == nil {
		return nil, shared.ErrNoTrack
	}

	track := normalizeTrack(playing.Item)
	track.IsPlaying = playing.IsPlaying
	track.ProgressMs = playing.ProgressMS

	return &track, nil
}

// Stats resolves recent history and top artists. The two upstream reads are
// independent and issued concurrently; each failure degrades its own field
// to an empty slice.
func (s *SpotifyService) Stats(ctx context.Context) (*Stats, error) {
	if !s.creds.Complete() {
		return nil, fmt.Errorf("%w: client id, client secret, and refresh token are required", shared.ErrMissingCredentials)
	}

	accessToken, err := s.ExchangeToken(ctx)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		TopArtists:   []TopArtist{},
		RecentTracks: []Track{},
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()

		var recent SpotifyRecentlyPlayed
		if status, err := s.doGet(ctx, accessToken, recentTracksEndpoint, &recent); err != nil || status < 200 || status >= 300 {
			return
		}

		for _, item := range recent.Items {
			track := normalizeTrack(&item.Track)
			stats.RecentTracks = append(stats.RecentTracks, track)
		}
	}()

	go func() {
		defer wg.Done()

		var top SpotifyTopArtists
		if status, err := s.doGet(ctx, accessToken, topArtistsEndpoint, &top); err != nil || status < 200 || status >= 300 {
			return
		}

		for _, artist := range top.Items {
			stats.TopArtists = append(stats.TopArtists, TopArtist{Name: artist.Name})
		}
	}()

	wg.Wait()

	return &stats, nil
}

// doGet performs an authenticated GET against the Spotify API.
//
// Returns the HTTP status; the result is decoded only on 200. Transport and
// decode failures are the only error cases so callers can branch on status.
func (s *SpotifyService) doGet(ctx context.Context, accessToken, endpoint string, result any) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return resp.StatusCode, nil
}

// normalizeTrack maps an upstream track into the stable Track shape:
// artists joined by ", ", first album image or empty string, duration
// defaulting to 0, release date defaulting to empty.
func normalizeTrack(item *SpotifyTrack) Track {
	names := make([]string, 0, len(item.Artists))
	for _, artist := range item.Artists {
		names = append(names, artist.Name)
	}

	albumArt := ""
	if len(item.Album.Images) > 0 {
		albumArt = item.Album.Images[0].URL
	}

	return Track{
		ID:          item.ID,
		Name:        item.Name,
		Artist:      strings.Join(names, ", "),
		Album:       item.Album.Name,
		AlbumArt:    albumArt,
		URL:         item.ExternalURLs.Spotify,
		DurationMs:  item.DurationMS,
		ReleaseDate: item.Album.ReleaseDate,
	}
}
