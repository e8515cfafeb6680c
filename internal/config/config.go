// Package config loads the run configuration from YAML and supplies the
// defaults a stock FSL installation expects.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// Atlas holds the probabilistic atlases to query per coordinate.
	Atlas struct {
		// Cortical is the atlas queried for cortical structures.
		Cortical string `yaml:"cortical"`

		// Subcortical is the atlas queried for subcortical structures.
		Subcortical string `yaml:"subcortical"`

		// MinProbability drops matches below this percentage.
		MinProbability int `yaml:"minProbability"`
	} `yaml:"atlas"`

	// Reports names the statistical report files inside a cope directory.
	Reports struct {
		Cluster     string `yaml:"cluster"`
		LocalMaxima string `yaml:"localMaxima"`
	} `yaml:"reports"`

	// Masks controls spherical mask synthesis.
	Masks struct {
		// Template is the standard-space image the masks are built against.
		Template string `yaml:"template"`

		// DefaultRadiusMM is used when the caller supplies no radius.
		DefaultRadiusMM int `yaml:"defaultRadiusMM"`

		// WritePreviews toggles the QC preview PNGs.
		WritePreviews bool `yaml:"writePreviews"`
	} `yaml:"masks"`

	// ServiceTimeoutSeconds bounds each external tool invocation. Zero
	// disables the per-call timeout.
	ServiceTimeoutSeconds int `yaml:"serviceTimeoutSeconds"`
}

// ServiceTimeout returns the per-call timeout as a duration.
func (c *Config) ServiceTimeout() time.Duration {
	return time.Duration(c.ServiceTimeoutSeconds) * time.Second
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Atlas.Cortical = "Harvard-Oxford Cortical Structural Atlas"
	cfg.Atlas.Subcortical = "Harvard-Oxford Subcortical Structural Atlas"
	cfg.Atlas.MinProbability = 5
	cfg.Reports.Cluster = "cluster_zstat1_std.txt"
	cfg.Reports.LocalMaxima = "lmax_zstat1_std.txt"
	cfg.Masks.Template = defaultTemplate()
	cfg.Masks.DefaultRadiusMM = 5
	cfg.Masks.WritePreviews = true
	cfg.ServiceTimeoutSeconds = 120
	return cfg
}

// Load reads a YAML configuration file over the defaults: absent keys keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Atlas.Cortical == "" || c.Atlas.Subcortical == "" {
		return fmt.Errorf("both atlas names must be set")
	}
	if c.Atlas.MinProbability < 0 || c.Atlas.MinProbability > 100 {
		return fmt.Errorf("minProbability %d out of range 0-100", c.Atlas.MinProbability)
	}
	if c.Masks.DefaultRadiusMM <= 0 {
		return fmt.Errorf("defaultRadiusMM must be positive")
	}
	if c.Reports.Cluster == "" || c.Reports.LocalMaxima == "" {
		return fmt.Errorf("both report filenames must be set")
	}
	if c.ServiceTimeoutSeconds < 0 {
		return fmt.Errorf("serviceTimeoutSeconds must not be negative")
	}
	return nil
}

// defaultTemplate points at the FSL standard template when FSLDIR is set.
func defaultTemplate() string {
	if dir := os.Getenv("FSLDIR"); dir != "" {
		return filepath.Join(dir, "data", "standard", "MNI152_T1_2mm_brain.nii.gz")
	}
	return "MNI152_T1_2mm_brain.nii.gz"
}
