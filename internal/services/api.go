// API client for a running lokedex deployment, used by the terminal widget
// and one-shot CLI commands that go through HTTP instead of the resolvers.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIService fetches widget data from the deployment's /api/spotify endpoints.
//
// The endpoints reply 200 with a JSON body that is either the value or the
// literal null; null decodes to a nil pointer here, mirroring the widget's
// "absence of data" contract.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates an API client for the given deployment base URL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:4321"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// NowPlaying fetches /api/spotify/now-playing. A null body returns (nil, nil).
func (a *APIService) NowPlaying(ctx context.Context) (*Track, error) {
	var track *Track
	if err := a.get(ctx, "/api/spotify/now-playing", &track); err != nil {
		return nil, err
	}
	return track, nil
}

// Stats fetches /api/spotify/stats. A null body returns (nil, nil).
func (a *APIService) Stats(ctx context.Context) (*Stats, error) {
	var stats *Stats
	if err := a.get(ctx, "/api/spotify/stats", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (a *APIService) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
