// Package app is the control loop: the single state machine that drains
// keyboard input, drives the playback engine and the Bluetooth
// coordinator, and pushes one display snapshot per tick.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pfiaux/inkamp/internal/bluetooth"
	"github.com/pfiaux/inkamp/internal/catalog"
	"github.com/pfiaux/inkamp/internal/config"
	"github.com/pfiaux/inkamp/internal/decoder"
	"github.com/pfiaux/inkamp/internal/display"
	"github.com/pfiaux/inkamp/internal/engine"
)

// InputSource is what the loop needs from the keyboard listener.
type InputSource interface {
	Start() error
	Events() <-chan byte
	Stop()
}

// Coordinator is what the loop needs from the Bluetooth layer.
type Coordinator interface {
	AutoConnect(ctx context.Context) (string, bool)
	ScanAndPair(ctx context.Context, timeout time.Duration) (string, bool)
}

type App struct {
	cfg     *config.Config
	starter decoder.Starter
	in      InputSource
	coord   Coordinator
	sink    display.Sink

	eng    *engine.Engine
	device string // connected Bluetooth sink, "" = none
	info   string // single-shot message for the next snapshot
	quit   bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func New(cfg *config.Config, starter decoder.Starter, in InputSource, coord Coordinator, sink display.Sink) *App {
	return &App{
		cfg:     cfg,
		starter: starter,
		in:      in,
		coord:   coord,
		sink:    sink,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run drives the whole process: startup, the tick loop, and cleanup on
// every exit path. It returns nil on a clean quit and an error on fatal
// conditions (display init, decoder spawn).
func (a *App) Run(ctx context.Context) error {
	if err := a.sink.Init(); err != nil {
		return fmt.Errorf("display init: %w", err)
	}
	defer a.sink.Close()
	defer a.shutdown()

	tracks, err := catalog.Scan(a.cfg.MusicDir)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		slog.Info("no tracks found", "dir", a.cfg.MusicDir)
		a.renderSnapshot(display.Snapshot{Title: "No tracks", BTStatus: bluetooth.StatusText("")})
		return nil
	}
	slog.Info("catalog scanned", "dir", a.cfg.MusicDir, "tracks", len(tracks))

	if id, ok := a.coord.AutoConnect(ctx); ok {
		a.device = id
	}

	a.eng = engine.New(tracks, a.starter)
	if err := a.eng.PlayCurrent(); err != nil {
		return err
	}

	if err := a.in.Start(); err != nil {
		return err
	}

	for !a.quit && ctx.Err() == nil {
		if err := a.tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

// shutdown runs on every exit path: terminal restored, no orphaned decoder.
func (a *App) shutdown() {
	a.in.Stop()
	if a.eng != nil {
		a.eng.StopCurrent()
	}
}
