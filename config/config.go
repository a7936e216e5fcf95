// Package config loads the engine configuration: where session
// artifacts live, the aligner's band width, the frame metric's
// visibility policy, and the default detector settings handed to the
// extractor.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/motionkit/posealign/landmark"
	"github.com/motionkit/posealign/session"
)

// Config is the on-disk configuration.
type Config struct {
	// DataDir is the artifact root; one directory per session.
	DataDir string `yaml:"data_dir"`

	// Window is the Sakoe–Chiba half-width for alignment; -1 keeps the
	// alignment exact.
	Window int `yaml:"window"`

	// VisibilityThreshold and WeightedMetric configure the frame
	// metric.
	VisibilityThreshold float64 `yaml:"visibility_threshold"`
	WeightedMetric      bool    `yaml:"weighted_metric"`

	// Extraction holds the default detector knobs for new sessions.
	Extraction session.Settings `yaml:"extraction"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	metric := landmark.DefaultMetricOptions()
	return Config{
		DataDir:             defaultDataDir(),
		Window:              -1,
		VisibilityThreshold: metric.VisibilityThreshold,
		WeightedMetric:      metric.Weighted,
		Extraction:          session.DefaultSettings(),
	}
}

// Load reads the YAML config at path, falling back to Default when the
// file does not exist. Values absent from the file keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	return cfg, nil
}

// StoreOptions translates the config into session store options.
func (c Config) StoreOptions() session.Options {
	opts := session.DefaultOptions(c.DataDir)
	opts.Window = c.Window
	opts.Metric = landmark.MetricOptions{
		VisibilityThreshold: c.VisibilityThreshold,
		Weighted:            c.WeightedMetric,
	}
	return opts
}

// defaultDataDir resolves the artifact root: POSEALIGN_DATA_DIR wins,
// then XDG_DATA_HOME, then ~/.local/share.
func defaultDataDir() string {
	if override := os.Getenv("POSEALIGN_DATA_DIR"); override != "" {
		return override
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "posealign")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "posealign-data"
	}
	return filepath.Join(home, ".local", "share", "posealign")
}
