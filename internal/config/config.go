package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	MusicDir    string  `koanf:"music_dir"`    // root directory scanned for audio files
	Decoder     string  `koanf:"decoder"`      // external decoder binary, invoked as "<decoder> <path>"
	TickSeconds float64 `koanf:"tick_seconds"` // control loop tick interval

	Display   DisplayConfig   `koanf:"display"`
	Bluetooth BluetoothConfig `koanf:"bluetooth"`
}

// DisplayConfig describes the e-paper panel.
type DisplayConfig struct {
	Width  int    `koanf:"width"`
	Height int    `koanf:"height"`
	Device string `koanf:"device"` // framebuffer device the packed image is written to
}

// BluetoothConfig holds audio-sink connection settings.
type BluetoothConfig struct {
	ScanTimeoutSeconds int    `koanf:"scan_timeout_seconds"` // bound for user-initiated scan+pair
	LastDeviceFile     string `koanf:"last_device_file"`     // override for the last-device file path
}

func Load() (*Config, error) {
	return loadFrom(getConfigPaths())
}

func loadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	cfg.MusicDir = expandPath(cfg.MusicDir)
	cfg.Bluetooth.LastDeviceFile = expandPath(cfg.Bluetooth.LastDeviceFile)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.MusicDir == "" {
		cfg.MusicDir = "~/music"
	}
	if cfg.Decoder == "" {
		cfg.Decoder = "mpg123"
	}
	if cfg.TickSeconds <= 0 {
		cfg.TickSeconds = 1
	}
	if cfg.Display.Width <= 0 {
		cfg.Display.Width = 250
	}
	if cfg.Display.Height <= 0 {
		cfg.Display.Height = 122
	}
	if cfg.Display.Device == "" {
		cfg.Display.Device = "/dev/fb1"
	}
	if cfg.Bluetooth.ScanTimeoutSeconds <= 0 {
		cfg.Bluetooth.ScanTimeoutSeconds = 15
	}
}

// TickInterval returns the control loop tick interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickSeconds * float64(time.Second))
}

// ScanTimeout returns the bound for a user-initiated Bluetooth scan.
func (c *Config) ScanTimeout() time.Duration {
	return time.Duration(c.Bluetooth.ScanTimeoutSeconds) * time.Second
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/inkamp/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "inkamp", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
