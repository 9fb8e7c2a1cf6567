package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/loganravin4/lokedex/internal/services"
	"github.com/loganravin4/lokedex/internal/shared"
)

// Cache lifetimes for the data endpoints. Now-playing stays short so song
// changes surface quickly; stats change slowly and bound upstream call volume.
const (
	nowPlayingMaxAge = "public, max-age=5"
	statsMaxAge      = "public, max-age=600"
)

// MusicHandler serves the two read-only data endpoints.
//
// The contract with the widget is "absence of data", not "error": every
// failure collapses to a literal null body with status 200 so the widget
// never needs to distinguish the cause.
type MusicHandler struct {
	resolver services.Resolver
	logger   *log.Logger
}

// NewMusicHandler creates a handler backed by the given resolver.
func NewMusicHandler(resolver services.Resolver, logger *log.Logger) *MusicHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &MusicHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *MusicHandler) Routes() []string {
	return []string{"/api/spotify/now-playing", "/api/spotify/stats"}
}

// ServeHTTP dispatches to the now-playing or stats resolver by path.
func (h *MusicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/spotify/now-playing":
		h.nowPlaying(w, r)
	case "/api/spotify/stats":
		h.stats(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *MusicHandler) nowPlaying(w http.ResponseWriter, r *http.Request) {
	track, err := h.resolver.NowPlaying(r.Context())
	if err != nil {
		h.logger.Warn("now-playing resolution failed", "error", err)
		h.writeNull(w)
		return
	}

	if track == nil {
		h.writeNull(w)
		return
	}

	h.writeJSON(w, track, nowPlayingMaxAge)
}

func (h *MusicHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.resolver.Stats(r.Context())
	if err != nil {
		h.logger.Warn("stats resolution failed", "error", err)
		h.writeNull(w)
		return
	}

	if stats == nil {
		h.writeNull(w)
		return
	}

	h.writeJSON(w, stats, statsMaxAge)
}

// writeNull writes the uniform "no data" signal: literal null, status 200.
func (h *MusicHandler) writeNull(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("null"))
}

// writeJSON writes a successful payload with its freshness window.
func (h *MusicHandler) writeJSON(w http.ResponseWriter, data any, maxAge string) {
	body, err := shared.MarshalJSON(data, false)
	if err != nil {
		h.logger.Error("failed to marshal response", "error", err)
		h.writeNull(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", maxAge)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
