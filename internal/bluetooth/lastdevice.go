package bluetooth

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// LastDevice persists the identifier of the most recently connected sink
// as a single line of plain text, so the box reconnects to it at boot.
type LastDevice struct {
	path string
}

// NewLastDevice returns a store at the given path, or at the default XDG
// data location when path is empty.
func NewLastDevice(path string) (*LastDevice, error) {
	if path == "" {
		p, err := xdg.DataFile(filepath.Join("inkamp", "last-device"))
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &LastDevice{path: path}, nil
}

// Load returns the saved device id, if any. A missing or empty file is the
// normal no-device state.
func (l *LastDevice) Load() (string, bool) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", false
	}
	id := strings.TrimSpace(string(data))
	return id, id != ""
}

// Save records id as the last connected device.
func (l *LastDevice) Save(id string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(l.path, []byte(id+"\n"), 0o644)
}
