// Package config loads the viewer's yaml configuration files. Missing files
// are not errors: every loader falls back to built-in defaults so the
// player always starts.
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// PlayerConfig configures the desktop player shell. Pointer fields are
// optional in the file; nil means use the default.
type PlayerConfig struct {
	WindowWidth  int      `yaml:"window_width"`
	WindowHeight int      `yaml:"window_height"`
	RepeatMode   string   `yaml:"repeat_mode"` // none, loop, reverse
	Rate         *float64 `yaml:"rate"`        // nil = 1.0
	Scale        *float64 `yaml:"scale"`       // nil = 1.0
	Verbose      bool     `yaml:"verbose"`
}

// GridConfig configures the showcase grid browser.
type GridConfig struct {
	Columns       int      `yaml:"columns"`
	CellMargin    *float64 `yaml:"cell_margin"`  // nil = 10
	LabelHeight   *float64 `yaml:"label_height"` // nil = 20, 0 disables labels
	LabelFontSize *float64 `yaml:"label_font_size"`
	BGColor       string   `yaml:"bg_color"`
	ShowLabels    *bool    `yaml:"show_labels"` // nil = true
}

// DefaultPlayerConfig returns the built-in player defaults.
func DefaultPlayerConfig() *PlayerConfig {
	rate := 1.0
	scale := 1.0
	return &PlayerConfig{
		WindowWidth:  1024,
		WindowHeight: 768,
		RepeatMode:   "loop",
		Rate:         &rate,
		Scale:        &scale,
	}
}

// DefaultGridConfig returns the built-in grid defaults.
func DefaultGridConfig() *GridConfig {
	margin := 10.0
	labelHeight := 20.0
	fontSize := 12.0
	show := true
	return &GridConfig{
		Columns:       3,
		CellMargin:    &margin,
		LabelHeight:   &labelHeight,
		LabelFontSize: &fontSize,
		BGColor:       "#1e1e1e",
		ShowLabels:    &show,
	}
}

// LoadPlayerConfig reads a player config file, returning defaults when the
// file is absent and an error only for unparseable content.
func LoadPlayerConfig(path string) (*PlayerConfig, error) {
	cfg := DefaultPlayerConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Config] No player config at '%s', using defaults", path)
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse player config: %w", err)
	}

	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 1024
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 768
	}
	if cfg.Rate == nil {
		rate := 1.0
		cfg.Rate = &rate
	}
	if cfg.Scale == nil {
		scale := 1.0
		cfg.Scale = &scale
	}

	log.Printf("[Config] Loaded player config from '%s' (%dx%d, repeat=%s)",
		path, cfg.WindowWidth, cfg.WindowHeight, cfg.RepeatMode)
	return cfg, nil
}

// LoadGridConfig reads a grid config file, returning defaults when the file
// is absent.
func LoadGridConfig(path string) (*GridConfig, error) {
	cfg := DefaultGridConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Config] No grid config at '%s', using defaults", path)
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse grid config: %w", err)
	}

	if cfg.Columns <= 0 {
		cfg.Columns = 3
	}
	if cfg.CellMargin == nil {
		margin := 10.0
		cfg.CellMargin = &margin
	}
	if cfg.LabelHeight == nil {
		labelHeight := 20.0
		cfg.LabelHeight = &labelHeight
	}
	if cfg.LabelFontSize == nil {
		fontSize := 12.0
		cfg.LabelFontSize = &fontSize
	}
	if cfg.ShowLabels == nil {
		show := true
		cfg.ShowLabels = &show
	}
	if cfg.BGColor == "" {
		cfg.BGColor = "#1e1e1e"
	}

	log.Printf("[Config] Loaded grid config from '%s' (columns=%d)", path, cfg.Columns)
	return cfg, nil
}
