// package widget renders the now-playing display and decides when to re-poll.
//
// Scheduling is duration-aware rather than fixed-interval: while a track is
// playing the next poll is aligned to just after the track should end, capped
// so song changes are never missed by more than 30 seconds. While nothing is
// playing a slow periodic check detects playback starting. Nothing polls while
// the terminal is unfocused.
package widget

import (
	"time"

	"github.com/loganravin4/lokedex/internal/services"
)

// State is the poller's scheduling condition.
type State int

const (
	// Idle means no timer is armed (widget not visible).
	Idle State = iota
	// WaitingForTrackEnd means a track is playing and the next poll is
	// aligned to its estimated end.
	WaitingForTrackEnd
	// PollingIdlePeriod means nothing is playing and the widget checks
	// periodically for playback starting.
	PollingIdlePeriod
)

func (s State) String() string {
	switch s {
	case WaitingForTrackEnd:
		return "waiting-for-track-end"
	case PollingIdlePeriod:
		return "polling-idle"
	default:
		return "idle"
	}
}

const (
	// trackEndBuffer pads the estimated track end so the next poll lands
	// after the song change.
	trackEndBuffer = 2 * time.Second
	// maxTrackDelay caps the wait so long tracks still get checked.
	maxTrackDelay = 30 * time.Second
	// unknownDurationDelay is assumed remaining time when duration is unknown.
	unknownDurationDelay = 30 * time.Second
	// idleInterval is the slow check cadence while nothing is playing.
	idleInterval = 60 * time.Second
)

// Plan computes the scheduling state and timer delay for the current display.
// The delay is meaningful only when the returned state arms a timer (anything
// but Idle). Exactly one timer may be armed per condition; callers cancel the
// previous timer before arming the planned one.
func Plan(track *services.Track, visible bool) (State, time.Duration) {
	if !visible {
		return Idle, 0
	}

	if track != nil && track.IsPlaying {
		remaining := unknownDurationDelay
		if track.DurationMs > 0 {
			remaining = time.Duration(track.DurationMs-track.ProgressMs) * time.Millisecond
		}

		delay := remaining + trackEndBuffer
		if delay > maxTrackDelay {
			delay = maxTrackDelay
		}
		return WaitingForTrackEnd, delay
	}

	return PollingIdlePeriod, idleInterval
}

// Apply decides the displayed track after a poll returns while current is shown.
//
//   - absent result: clear to "nothing playing"
//   - nothing was shown: adopt only if playback started
//   - different identity: adopt the new track
//   - same identity, no longer playing: clear
//   - same identity, still playing: keep it, with fresh progress
func Apply(current, fetched *services.Track) *services.Track {
	if fetched == nil {
		return nil
	}

	if current == nil {
		if fetched.IsPlaying {
			return fetched
		}
		return nil
	}

	if fetched.ID != current.ID {
		return fetched
	}
	if !fetched.IsPlaying {
		return nil
	}

	return fetched
}
