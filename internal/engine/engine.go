// Package engine owns playback state: the track cursor, the decoder
// process handle and the pause-aware elapsed clock. It is driven solely by
// the control loop goroutine, so no locking is needed here.
package engine

import (
	"time"

	"github.com/pfiaux/inkamp/internal/catalog"
	"github.com/pfiaux/inkamp/internal/decoder"
)

type Engine struct {
	tracks  []catalog.Track // read-only reference, owned by the catalog
	starter decoder.Starter

	cursor           int
	proc             decoder.Process
	startedAt        time.Time
	paused           bool
	pauseStartedAt   time.Time
	accumulatedPause time.Duration

	now func() time.Time // injectable clock
}

func New(tracks []catalog.Track, starter decoder.Starter) *Engine {
	return &Engine{
		tracks:  tracks,
		starter: starter,
		now:     time.Now,
	}
}

// Current returns the track under the cursor, or nil for an empty catalog.
func (e *Engine) Current() *catalog.Track {
	if len(e.tracks) == 0 {
		return nil
	}
	return &e.tracks[e.cursor]
}

// Cursor returns the current track index.
func (e *Engine) Cursor() int { return e.cursor }

// PlayCurrent stops any running decoder and starts one for the track under
// the cursor. Spawn failures propagate: a missing decoder binary is fatal
// for the caller, not something to retry per tick.
func (e *Engine) PlayCurrent() error {
	if len(e.tracks) == 0 {
		return nil
	}

	e.StopCurrent()

	proc, err := e.starter.Start(e.tracks[e.cursor].Path)
	if err != nil {
		return err
	}

	e.proc = proc
	e.startedAt = e.now()
	e.paused = false
	e.accumulatedPause = 0
	return nil
}

// StopCurrent terminates the running decoder, if any, and clears the
// handle. Idempotent.
func (e *Engine) StopCurrent() {
	if e.proc == nil {
		return
	}
	e.proc.Stop()
	e.proc = nil
	e.startedAt = time.Time{}
	e.paused = false
}

// Next advances the cursor with wraparound and plays the new track.
func (e *Engine) Next() error {
	if len(e.tracks) == 0 {
		return nil
	}
	e.cursor = (e.cursor + 1) % len(e.tracks)
	return e.PlayCurrent()
}

// Previous retreats the cursor with wraparound and plays the new track.
func (e *Engine) Previous() error {
	if len(e.tracks) == 0 {
		return nil
	}
	e.cursor = (e.cursor - 1 + len(e.tracks)) % len(e.tracks)
	return e.PlayCurrent()
}

// TogglePause suspends or resumes the decoder process and keeps the pause
// bookkeeping consistent so Elapsed does not move while paused.
func (e *Engine) TogglePause() error {
	if e.proc == nil {
		return nil
	}

	if e.paused {
		if err := e.proc.Resume(); err != nil {
			return err
		}
		e.accumulatedPause += e.now().Sub(e.pauseStartedAt)
		e.paused = false
		return nil
	}

	if err := e.proc.Suspend(); err != nil {
		return err
	}
	e.paused = true
	e.pauseStartedAt = e.now()
	return nil
}

// IsPlaying reports whether a decoder is running and not paused.
func (e *Engine) IsPlaying() bool {
	return e.proc != nil && !e.paused && !e.proc.Finished()
}

// HasFinished reports whether the current decoder exited on its own. The
// control loop uses this once per tick to auto-advance.
func (e *Engine) HasFinished() bool {
	return e.proc != nil && e.proc.Finished()
}

// Paused reports whether playback is suspended.
func (e *Engine) Paused() bool { return e.paused }

// Elapsed returns whole seconds of play time for the current track,
// excluding time spent paused. Never negative.
func (e *Engine) Elapsed() int {
	if e.startedAt.IsZero() {
		return 0
	}

	var d time.Duration
	if e.paused {
		d = e.pauseStartedAt.Sub(e.startedAt) - e.accumulatedPause
	} else {
		d = e.now().Sub(e.startedAt) - e.accumulatedPause
	}

	secs := int(d.Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
