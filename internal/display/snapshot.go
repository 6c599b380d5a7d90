// Package display renders now-playing state for the e-paper panel. A
// Snapshot is the complete set of fields shown in one tick; the rasterizer
// turns it into a monochrome image and sinks push the packed bits out.
package display

import "fmt"

// Snapshot is a value object recomputed every tick, never persisted.
type Snapshot struct {
	Title    string
	Elapsed  int // seconds
	Duration int // seconds, 0 = unknown
	BTStatus string
	Info     string // single-shot message, cleared after one tick
}

// Timeline renders "m:ss / m:ss", with "--:--" for an unknown duration.
func (s Snapshot) Timeline() string {
	if s.Duration <= 0 {
		return fmt.Sprintf("%s / --:--", FormatClock(s.Elapsed))
	}
	return fmt.Sprintf("%s / %s", FormatClock(s.Elapsed), FormatClock(s.Duration))
}

// FormatClock renders whole seconds as m:ss.
func FormatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
