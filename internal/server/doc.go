// Package server provides HTTP routing, middleware, and the music service's handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Data Endpoints
//
// [MusicHandler] serves /api/spotify/now-playing and /api/spotify/stats. Both
// reply 200 with either a JSON value or the literal null; failures never
// surface as HTTP error statuses because the widget's contract is "absence of
// data", not "error". Successful responses carry a Cache-Control freshness
// window (5s for now-playing, 600s for stats).
//
// # Bootstrap Flow
//
// [BootstrapHandler] implements the out-of-band operator flow. /api/spotify/auth
// redirects to Spotify's consent page; /api/spotify/callback exchanges the
// authorization code and renders the refresh token once. The handler exposes a
// result channel so the CLI can run the flow against a temporary local server
// and shut it down when the exchange completes.
package server
