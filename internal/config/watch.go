package config

import (
	"path/filepath"
	"strings"
	"time"
)

// WatchConfig configures the auto-vectorise file watcher.
type WatchConfig struct {
	// Paths are the directories watched recursively.
	Paths []string `yaml:"paths"`

	// Extensions restrict which files trigger re-vectorising. Empty means
	// every file.
	Extensions []string `yaml:"extensions"`

	// IgnoreDirs are directory names skipped entirely.
	IgnoreDirs []string `yaml:"ignore_dirs"`

	// Debounce coalesces bursts of filesystem events into one job.
	Debounce string `yaml:"debounce"`
}

// GetDebounce returns the debounce window as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// ShouldIndex reports whether a changed file is eligible for
// re-vectorising: not hidden, not inside an ignored directory, and matching
// the extension list.
func (w WatchConfig) ShouldIndex(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		for _, dir := range w.IgnoreDirs {
			if part == dir {
				return false
			}
		}
	}

	if len(w.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range w.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
