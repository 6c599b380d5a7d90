package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfiaux/inkamp/internal/app"
	"github.com/pfiaux/inkamp/internal/bluetooth"
	"github.com/pfiaux/inkamp/internal/config"
	"github.com/pfiaux/inkamp/internal/decoder"
	"github.com/pfiaux/inkamp/internal/display"
	"github.com/pfiaux/inkamp/internal/input"
)

// Bound for a single bluetoothctl command; the scan window has its own.
const btCommandTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "inkamp: loading config: %v\n", err)
		os.Exit(1)
	}

	last, err := bluetooth.NewLastDevice(cfg.Bluetooth.LastDeviceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inkamp: %v\n", err)
		os.Exit(1)
	}

	a := app.New(
		cfg,
		decoder.ExecStarter{Bin: cfg.Decoder},
		input.New(),
		bluetooth.NewCoordinator(bluetooth.NewCtl(btCommandTimeout), last),
		display.NewPanelSink(cfg.Display.Width, cfg.Display.Height, cfg.Display.Device),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "inkamp: %v\n", err)
		os.Exit(1)
	}
}
