// Package storage persists viewer settings across runs through gdata's
// platform app-data directory. A nil manager degrades to memory-only
// settings, which keeps the player usable on platforms where no writable
// app-data location exists.
package storage

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// Settings holds everything the viewer remembers between runs.
type Settings struct {
	LastDir    string  `yaml:"lastDir"`    // last browsed scene directory
	RepeatMode string  `yaml:"repeatMode"` // none, loop, reverse
	Rate       float64 `yaml:"rate"`       // playback rate multiplier
	ShowStats  bool    `yaml:"showStats"`  // HUD overlay on startup
}

// DefaultSettings returns the out-of-the-box viewer settings.
func DefaultSettings() *Settings {
	return &Settings{
		RepeatMode: "loop",
		Rate:       1.0,
	}
}

const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// SettingsManager loads and saves viewer settings. Changes are in-memory
// until Save is called.
type SettingsManager struct {
	gdataManager *gdata.Manager
	settings     *Settings
}

// NewSettingsManager creates a manager and loads any saved settings. The
// gdata manager may be nil; load failures fall back to defaults and are
// not fatal.
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[Settings] Warning: Failed to load settings: %v (using defaults)", err)
	}
	return sm, nil
}

// Load reads settings from the app-data store, using defaults when no
// store is available or nothing was saved yet.
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}
	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	var loaded Settings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if loaded.Rate <= 0 {
		loaded.Rate = 1.0
	}

	sm.settings = &loaded
	return nil
}

// Save writes the current settings to the app-data store. A nil manager
// makes this a no-op rather than an error.
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Get returns the current settings instance.
func (sm *SettingsManager) Get() *Settings { return sm.settings }

// SetLastDir remembers the last browsed directory. In-memory until Save.
func (sm *SettingsManager) SetLastDir(dir string) { sm.settings.LastDir = dir }

// SetRepeatMode remembers the repeat mode. In-memory until Save.
func (sm *SettingsManager) SetRepeatMode(mode string) { sm.settings.RepeatMode = mode }

// SetRate remembers the playback rate, clamped to a sane range.
func (sm *SettingsManager) SetRate(rate float64) {
	if rate <= 0 {
		rate = 1.0
	}
	sm.settings.Rate = rate
}

// SetShowStats remembers the HUD preference. In-memory until Save.
func (sm *SettingsManager) SetShowStats(show bool) { sm.settings.ShowStats = show }
