// Package catalog discovers audio files under a root directory and turns
// them into the ordered, immutable track list the playback engine runs on.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Track is one playable entry. Immutable once scanned.
type Track struct {
	Path     string // unique within the catalog
	Title    string // display only, falls back to the file name
	Duration int    // seconds, 0 = unknown
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".ogg":  true,
	".flac": true,
	".wav":  true,
	".m4a":  true,
}

// IsAudioFile reports whether the path has a supported audio extension,
// case-insensitively.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Scan walks root recursively and returns every audio file found, in
// traversal order (lexical per directory). Unreadable entries are skipped,
// a missing root is an error, an empty tree is an empty catalog.
func Scan(root string) ([]Track, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("music dir: %w", err)
	}

	var tracks []Track
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		// Skip any walk errors - intentionally continuing to scan other paths
		if walkErr != nil {
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if d.IsDir() {
			return nil
		}
		if !IsAudioFile(path) {
			return nil
		}
		tracks = append(tracks, scanTrack(path))
		return nil
	})

	return tracks, nil
}

// scanTrack reads display metadata for a single file. Tag failures are
// normal (untagged or odd files) and fall back to the file name.
func scanTrack(path string) Track {
	t := Track{Path: path, Title: titleFromTags(path)}
	if t.Title == "" {
		t.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if props, err := taglib.ReadProperties(path); err == nil {
		t.Duration = int(props.Length.Seconds())
	} else {
		slog.Debug("no duration for track", "path", path, "error", err)
	}

	return t
}

func titleFromTags(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return ""
	}
	return m.Title()
}
