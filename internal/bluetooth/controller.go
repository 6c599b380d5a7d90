// Package bluetooth connects the audio sink. The platform stack is driven
// through the bluetoothctl utility; everything above it only sees the
// Controller capability interface, and every failure degrades to "no
// device" rather than an error the loop has to care about.
package bluetooth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/GiGurra/cmder"
)

// Device is one entry from a bluetoothctl device listing.
type Device struct {
	ID   string // MAC-style identifier
	Name string
}

// Controller is the platform Bluetooth capability.
type Controller interface {
	PowerOn(ctx context.Context) error
	MakeDiscoverable(ctx context.Context) error
	PairedDevices(ctx context.Context) ([]Device, error)
	Devices(ctx context.Context) ([]Device, error)
	Connect(ctx context.Context, id string) error
	Disconnect(ctx context.Context, id string) error
	Pair(ctx context.Context, id string) error
	Trust(ctx context.Context, id string) error
	// Scan runs discovery for the given duration and blocks until it ends.
	Scan(ctx context.Context, timeout time.Duration) error
}

// Ctl drives the bluetoothctl command line utility.
type Ctl struct {
	cmdTimeout time.Duration
	run        func(ctx context.Context, timeout time.Duration, args ...string) (string, error)
}

var _ Controller = (*Ctl)(nil)

// NewCtl returns a Controller backed by bluetoothctl. cmdTimeout bounds
// each individual command (connect attempts can hang on a sink that
// wandered out of range).
func NewCtl(cmdTimeout time.Duration) *Ctl {
	return &Ctl{
		cmdTimeout: cmdTimeout,
		run:        runBluetoothctl,
	}
}

func runBluetoothctl(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	res := cmder.New(append([]string{"bluetoothctl"}, args...)...).
		WithAttemptTimeout(timeout).
		Run(ctx)
	return res.StdOut, res.Err
}

func (c *Ctl) PowerOn(ctx context.Context) error {
	_, err := c.run(ctx, c.cmdTimeout, "power", "on")
	return err
}

func (c *Ctl) MakeDiscoverable(ctx context.Context) error {
	if _, err := c.run(ctx, c.cmdTimeout, "discoverable", "on"); err != nil {
		return err
	}
	_, err := c.run(ctx, c.cmdTimeout, "pairable", "on")
	return err
}

func (c *Ctl) PairedDevices(ctx context.Context) ([]Device, error) {
	out, err := c.run(ctx, c.cmdTimeout, "paired-devices")
	if err != nil {
		return nil, err
	}
	return parseDevices(out), nil
}

func (c *Ctl) Devices(ctx context.Context) ([]Device, error) {
	out, err := c.run(ctx, c.cmdTimeout, "devices")
	if err != nil {
		return nil, err
	}
	return parseDevices(out), nil
}

func (c *Ctl) Connect(ctx context.Context, id string) error {
	_, err := c.run(ctx, c.cmdTimeout, "connect", id)
	return err
}

func (c *Ctl) Disconnect(ctx context.Context, id string) error {
	_, err := c.run(ctx, c.cmdTimeout, "disconnect", id)
	return err
}

func (c *Ctl) Pair(ctx context.Context, id string) error {
	_, err := c.run(ctx, c.cmdTimeout, "pair", id)
	return err
}

func (c *Ctl) Trust(ctx context.Context, id string) error {
	_, err := c.run(ctx, c.cmdTimeout, "trust", id)
	return err
}

func (c *Ctl) Scan(ctx context.Context, timeout time.Duration) error {
	// "--timeout N scan on" makes bluetoothctl run discovery for N seconds
	// and exit, which is exactly the blocking window we want.
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	_, err := c.run(ctx, timeout+c.cmdTimeout, "--timeout", strconv.Itoa(secs), "scan", "on")
	return err
}

// parseDevices extracts devices from line-oriented bluetoothctl output of
// the form "Device <id> <name...>".
func parseDevices(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 || fields[0] != "Device" {
			continue
		}
		devices = append(devices, Device{
			ID:   fields[1],
			Name: strings.Join(fields[2:], " "),
		})
	}
	return devices
}
