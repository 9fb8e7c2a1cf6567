// package services defines the resolvers that turn upstream music API
// responses into the stable shapes served to the widget.
package services

import (
	"context"
)

// Resolver produces normalized music data, or absence, from the upstream API.
//
// Every failure mode (missing credentials, refresh failure, upstream error,
// malformed payload) is reported as an error so tests can inspect the cause;
// the HTTP boundary collapses all of them to a null body.
type Resolver interface {
	// NowPlaying resolves the currently playing track.
	// Returns (nil, nil) when nothing is playing.
	NowPlaying(ctx context.Context) (*Track, error)

	// Stats resolves recent listening history and top artists.
	// Each upstream read fails independently into an empty slice.
	Stats(ctx context.Context) (*Stats, error)
}

// Track is the normalized track shape shared by the now-playing and stats
// endpoints. ID is the sole field the widget uses to detect song changes.
type Track struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumArt    string `json:"albumArt"`
	URL         string `json:"url"`
	IsPlaying   bool   `json:"isPlaying"`
	ProgressMs  int    `json:"progressMs"`
	DurationMs  int    `json:"durationMs"`
	ReleaseDate string `json:"releaseDate,omitempty"`
}

// TopArtist is a single entry in the top-artists collection.
type TopArtist struct {
	Name string `json:"name"`
}

// Stats aggregates the two slow-moving read collections.
// RecentTracks entries always carry IsPlaying=false.
type Stats struct {
	TopArtists   []TopArtist `json:"topArtists"`
	RecentTracks []Track     `json:"recentTracks"`
}
