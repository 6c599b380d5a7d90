package bluetooth

import (
	"context"
	"log/slog"
	"time"
)

// Coordinator implements the connection policy on top of a Controller:
// remember what worked, try it first, fall back to anything paired, and
// scan for new sinks only on explicit user request.
type Coordinator struct {
	ctl  Controller
	last *LastDevice
}

func NewCoordinator(ctl Controller, last *LastDevice) *Coordinator {
	return &Coordinator{ctl: ctl, last: last}
}

// AutoConnect tries the saved device first, then each paired device in
// listing order. The winner is persisted. Returns ("", false) when nothing
// connects; that is a normal state, not an error.
func (c *Coordinator) AutoConnect(ctx context.Context) (string, bool) {
	if err := c.ctl.PowerOn(ctx); err != nil {
		slog.Warn("bluetooth power on failed", "error", err)
	}

	saved, hasSaved := c.last.Load()
	if hasSaved {
		if err := c.ctl.Connect(ctx, saved); err == nil {
			slog.Info("connected to saved device", "device", saved)
			return saved, true
		}
		slog.Info("saved device unavailable", "device", saved)
	}

	paired, err := c.ctl.PairedDevices(ctx)
	if err != nil {
		slog.Warn("could not list paired devices", "error", err)
		return "", false
	}

	for _, d := range paired {
		if hasSaved && d.ID == saved {
			continue // already tried
		}
		if err := c.ctl.Connect(ctx, d.ID); err != nil {
			continue
		}
		slog.Info("connected to paired device", "device", d.ID, "name", d.Name)
		c.persist(d.ID)
		return d.ID, true
	}

	return "", false
}

// ScanAndPair makes the adapter discoverable, runs discovery for the given
// timeout and then tries to pair, trust and connect each newly seen
// device. Deliberately blocking: the user asked for it and waits.
func (c *Coordinator) ScanAndPair(ctx context.Context, timeout time.Duration) (string, bool) {
	if err := c.ctl.PowerOn(ctx); err != nil {
		slog.Warn("bluetooth power on failed", "error", err)
	}
	if err := c.ctl.MakeDiscoverable(ctx); err != nil {
		slog.Warn("could not make adapter discoverable", "error", err)
	}

	known := map[string]bool{}
	if devs, err := c.ctl.Devices(ctx); err == nil {
		for _, d := range devs {
			known[d.ID] = true
		}
	}

	if err := c.ctl.Scan(ctx, timeout); err != nil {
		slog.Warn("bluetooth scan failed", "error", err)
		return "", false
	}

	devs, err := c.ctl.Devices(ctx)
	if err != nil {
		slog.Warn("could not list devices after scan", "error", err)
		return "", false
	}

	for _, d := range devs {
		if known[d.ID] {
			continue
		}
		slog.Info("trying new device", "device", d.ID, "name", d.Name)
		if err := c.ctl.Pair(ctx, d.ID); err != nil {
			continue
		}
		if err := c.ctl.Trust(ctx, d.ID); err != nil {
			slog.Warn("trust failed", "device", d.ID, "error", err)
		}
		if err := c.ctl.Connect(ctx, d.ID); err != nil {
			continue
		}
		c.persist(d.ID)
		return d.ID, true
	}

	return "", false
}

func (c *Coordinator) persist(id string) {
	if err := c.last.Save(id); err != nil {
		slog.Warn("could not save last device", "device", id, "error", err)
	}
}

// StatusText renders a connection state for the display.
func StatusText(id string) string {
	if id == "" {
		return "BT: none"
	}
	return "BT: " + id
}
