// Package theme manages the visual theme catalog and the per-viewer theme
// session. Theme availability is tier-gated through the access evaluator;
// the catalog always contains a tier-free default so every viewer has a
// reachable fallback.
package theme

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/apogeepress/apogee-server/internal/domain"
)

// BuiltinThemes returns the themes the server ships with.
// mission-control is the process-wide default and carries no tier
// requirement.
func BuiltinThemes() []domain.Theme {
	return []domain.Theme{
		{
			ID:          "theme-mission-control",
			Name:        domain.DefaultThemeName,
			DisplayName: "Mission Control",
			Variables: map[string]string{
				"--bg-primary":   "#0b0e14",
				"--bg-surface":   "#151a23",
				"--text-primary": "#e6e9ef",
				"--accent":       "#4f8ff7",
			},
		},
		{
			ID:           "theme-apollo",
			Name:         "apollo",
			DisplayName:  "Apollo",
			RequiredTier: domain.TierOne,
			Variables: map[string]string{
				"--bg-primary":   "#1a1612",
				"--bg-surface":   "#262019",
				"--text-primary": "#f2ead9",
				"--accent":       "#d9a441",
			},
		},
		{
			ID:           "theme-aurora",
			Name:         "aurora",
			DisplayName:  "Aurora",
			RequiredTier: domain.TierOne,
			EffectFlags:  []string{"gradient-shift"},
			Variables: map[string]string{
				"--bg-primary":   "#0a1410",
				"--bg-surface":   "#122019",
				"--text-primary": "#dff5ea",
				"--accent":       "#3ddc97",
			},
		},
		{
			ID:           "theme-nebula",
			Name:         "nebula",
			DisplayName:  "Nebula",
			RequiredTier: domain.TierTwo,
			EffectFlags:  []string{"starfield"},
			Variables: map[string]string{
				"--bg-primary":   "#120b1c",
				"--bg-surface":   "#1d1229",
				"--text-primary": "#ece4f7",
				"--accent":       "#a06df7",
			},
		},
		{
			ID:           "theme-deep-field",
			Name:         "deep-field",
			DisplayName:  "Deep Field",
			RequiredTier: domain.TierThree,
			EffectFlags:  []string{"starfield", "parallax"},
			Variables: map[string]string{
				"--bg-primary":   "#030308",
				"--bg-surface":   "#0a0a14",
				"--text-primary": "#f0f0f5",
				"--accent":       "#f75f8f",
			},
		},
	}
}

// Catalog is the fixed, slowly-changing set of available themes.
// It is read-only to sessions; the only mutation path is a reload from the
// catalog file, which swaps the whole set atomically.
type Catalog struct {
	mu      sync.RWMutex
	themes  []domain.Theme
	byName  map[string]domain.Theme
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCatalog creates a catalog seeded with the builtin themes.
func NewCatalog(logger *slog.Logger) *Catalog {
	c := &Catalog{logger: logger}
	// Builtins are known-valid; ignore the validation error path.
	_ = c.replace(BuiltinThemes())
	return c
}

// validateThemes enforces the catalog invariants: the default theme exists
// exactly once and carries no tier requirement.
func validateThemes(themes []domain.Theme) error {
	defaults := 0
	seen := make(map[string]bool, len(themes))
	for i := range themes {
		t := &themes[i]
		if t.Name == "" {
			return fmt.Errorf("theme %q has no machine name", t.ID)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate theme name %q", t.Name)
		}
		seen[t.Name] = true
		if t.IsDefault() {
			defaults++
			if t.RequiresTier() != domain.TierFree {
				return fmt.Errorf("default theme %q must not carry a tier requirement", t.Name)
			}
		}
	}
	if defaults != 1 {
		return fmt.Errorf("catalog must contain exactly one default theme, found %d", defaults)
	}
	return nil
}

func (c *Catalog) replace(themes []domain.Theme) error {
	if err := validateThemes(themes); err != nil {
		return err
	}

	byName := make(map[string]domain.Theme, len(themes))
	for _, t := range themes {
		byName[t.Name] = t
	}

	c.mu.Lock()
	c.themes = themes
	c.byName = byName
	c.mu.Unlock()
	return nil
}

// List returns all themes in catalog order, including their tier
// requirements so clients can show locked entries with upgrade affordances.
func (c *Catalog) List() []domain.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Theme, len(c.themes))
	copy(out, c.themes)
	return out
}

// Get looks up a theme by machine name.
func (c *Catalog) Get(name string) (domain.Theme, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.byName[name]
	return t, ok
}

// Default returns the tier-free fallback theme.
func (c *Catalog) Default() domain.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.byName[domain.DefaultThemeName]
}

// LoadFile replaces the catalog from a JSON file.
// A missing file is not an error: the builtin catalog stays in effect. A
// malformed or invalid file keeps the current catalog so sessions never see
// an empty or defaultless catalog.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path) //#nosec G304 -- Catalog path comes from validated config
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read theme catalog: %w", err)
	}

	var themes []domain.Theme
	if err := json.Unmarshal(data, &themes); err != nil {
		return fmt.Errorf("parse theme catalog: %w", err)
	}

	if err := c.replace(themes); err != nil {
		return fmt.Errorf("invalid theme catalog: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("theme catalog loaded", "path", path, "themes", len(themes))
	}
	return nil
}

// Watch reloads the catalog whenever the file changes on disk.
// Reload failures keep the previous catalog and are logged for operators.
func (c *Catalog) Watch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}

	// Watch the directory rather than the file so editors that replace the
	// file (rename-over-write) don't silently drop the watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch catalog directory: %w", err)
	}

	c.watcher = watcher
	c.done = make(chan struct{})

	go func() {
		target := filepath.Clean(path)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := c.LoadFile(path); err != nil && c.logger != nil {
					c.logger.Warn("theme catalog reload failed, keeping current catalog",
						"path", path,
						"error", err,
					)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if c.logger != nil {
					c.logger.Warn("theme catalog watcher error", "error", err)
				}
			case <-c.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the catalog watcher if one is running.
func (c *Catalog) Close() error {
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}
