// Datasource config change detection.
//
// Toolset configuration files (Grafana endpoints, HTTP allow-lists) are
// fingerprinted between runs so the agent knows when to refresh its
// toolsets. Hashes are persisted as JSON next to the rest of the agent
// state; any read failure is treated as "changed" rather than an error.

package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// hashFileName is where config hashes are stored inside ConfigDir().
const hashFileName = "config_hashes"

// HashTracker fingerprints config files and remembers the fingerprints
// between runs.
type HashTracker struct {
	path   string
	logger *slog.Logger
}

// NewHashTracker creates a tracker storing hashes at the default location.
func NewHashTracker(logger *slog.Logger) *HashTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &HashTracker{
		path:   filepath.Join(ConfigDir(), hashFileName),
		logger: logger,
	}
}

// WithPath overrides the hash file location (used by tests).
func (t *HashTracker) WithPath(path string) *HashTracker {
	t.path = path
	return t
}

// FileHash computes the xxhash fingerprint of a file's full contents.
func FileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read file for hashing: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

// CheckAndUpdate reports whether any of the given config files changed
// since the last run: a new hash, a new file, or a previously tracked file
// that disappeared. Updated hashes are saved before returning so the next
// run compares against them.
func (t *HashTracker) CheckAndUpdate(filePaths []string) bool {
	stored := t.load()
	current := make(map[string]string)
	changed := false

	for _, path := range filePaths {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		hash, err := FileHash(abs)
		if err != nil {
			continue
		}
		current[abs] = hash
		if stored[abs] != hash {
			t.logger.Info("config hash changed for datasource", "path", abs)
			changed = true
		}
	}

	for storedPath := range stored {
		if _, ok := current[storedPath]; !ok {
			t.logger.Info("previously tracked datasource config removed", "path", storedPath)
			changed = true
		}
	}

	if changed {
		t.save(current)
	}
	return changed
}

func (t *HashTracker) load() map[string]string {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			t.logger.Warn("could not load config hashes", "path", t.path, "error", err)
		}
		return map[string]string{}
	}
	hashes := map[string]string{}
	if err := json.Unmarshal(data, &hashes); err != nil {
		t.logger.Warn("could not parse config hashes", "path", t.path, "error", err)
		return map[string]string{}
	}
	return hashes
}

func (t *HashTracker) save(hashes map[string]string) {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.logger.Warn("could not create config hash directory", "dir", dir, "error", err)
		return
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		t.logger.Warn("could not encode config hashes", "error", err)
		return
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		t.logger.Warn("could not save config hashes", "path", t.path, "error", err)
	}
}
