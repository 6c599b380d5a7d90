package app

import (
	"context"
	"log/slog"

	"github.com/pfiaux/inkamp/internal/bluetooth"
	"github.com/pfiaux/inkamp/internal/display"
)

// tick is one loop iteration: drain input, auto-advance, render, sleep out
// the rest of the interval.
func (a *App) tick(ctx context.Context) error {
	start := a.now()

	if err := a.drainInput(ctx); err != nil {
		return err
	}
	if a.quit || ctx.Err() != nil {
		return nil
	}

	// Sequential playback: a decoder that exited on its own moves the
	// cursor forward. All exits advance uniformly; a corrupt file is
	// indistinguishable from a finished one at the process boundary.
	if a.eng.HasFinished() {
		if err := a.eng.Next(); err != nil {
			return err
		}
	}

	a.renderSnapshot(a.snapshot())
	a.info = "" // info messages are single-shot

	if remaining := a.cfg.TickInterval() - a.now().Sub(start); remaining > 0 {
		a.sleep(ctx, remaining)
	}
	return nil
}

// drainInput consumes everything already buffered without waiting for
// more. A quit key stops the batch immediately: later events are left
// unprocessed on purpose.
func (a *App) drainInput(ctx context.Context) error {
	for {
		select {
		case b := <-a.in.Events():
			if err := a.dispatch(ctx, b); err != nil {
				return err
			}
			if a.quit {
				return nil
			}
		default:
			return nil
		}
	}
}

func (a *App) dispatch(ctx context.Context, key byte) error {
	switch key {
	case 'n', 'N':
		a.info = "Next track"
		return a.eng.Next()
	case 'p', 'P':
		a.info = "Previous track"
		return a.eng.Previous()
	case ' ':
		a.info = "Play/Pause"
		return a.eng.TogglePause()
	case 's', 'S':
		a.scan(ctx)
	case 'q', 'Q', 0x03: // ctrl-c arrives as a raw byte in raw mode
		a.quit = true
	default:
		// ignored
	}
	return nil
}

// scan runs the user-initiated pairing flow. The loop stalls for the scan
// window by design; the interim snapshot tells the user why.
func (a *App) scan(ctx context.Context) {
	interim := a.snapshot()
	interim.Info = "Scanning..."
	a.renderSnapshot(interim)

	id, ok := a.coord.ScanAndPair(ctx, a.cfg.ScanTimeout())
	if !ok {
		a.device = ""
		a.info = "No BT device found"
		return
	}
	a.device = id
	a.info = "Connected " + id
}

func (a *App) snapshot() display.Snapshot {
	s := display.Snapshot{
		Title:    "No track",
		BTStatus: bluetooth.StatusText(a.device),
		Info:     a.info,
	}
	if t := a.eng.Current(); t != nil {
		s.Title = t.Title
		s.Elapsed = a.eng.Elapsed()
		s.Duration = t.Duration
	}
	return s
}

func (a *App) renderSnapshot(s display.Snapshot) {
	// A glitched refresh is not worth crashing playback over; only a
	// failed Init is fatal.
	if err := a.sink.Render(s); err != nil {
		slog.Warn("display render failed", "error", err)
	}
}
