// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"

	"github.com/loganravin4/lokedex/internal/services"
)

// MockResolver is a test double for [services.Resolver] with canned results.
type MockResolver struct {
	Track    *services.Track
	TrackErr error
	StatsVal *services.Stats
	StatsErr error

	NowPlayingCalls int
	StatsCalls      int
}

func (m *MockResolver) NowPlaying(ctx context.Context) (*services.Track, error) {
	m.NowPlayingCalls++
	return m.Track, m.TrackErr
}

func (m *MockResolver) Stats(ctx context.Context) (*services.Stats, error) {
	m.StatsCalls++
	return m.StatsVal, m.StatsErr
}

// MockRoundTripper allows custom HTTP responses for testing.
type MockRoundTripper struct {
	Response *http.Response
	Err      error
	Calls    int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{Response: r, Err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.Calls++
	return m.Response, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
