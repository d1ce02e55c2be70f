// Package config handles oxy-scene configuration loading and management.
package config

import (
	"fmt"
	"slices"
)

// Backend names accepted in GPUConfig.Backend.
const (
	BackendMemory = "memory"
	BackendWGPU   = "wgpu"
)

// Config holds all tool settings.
type Config struct {
	Logging    LoggingConfig     `yaml:"logging"`
	Loader     LoaderConfig      `yaml:"loader"`
	GPU        GPUConfig         `yaml:"gpu"`
	Evaluation EvaluationConfig  `yaml:"evaluation"`
	Window     WindowConfig      `yaml:"window"`
	Bindings   map[string]uint32 `yaml:"bindings"` // semantic attribute name -> vertex slot
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// LoaderConfig holds asset decoding settings.
type LoaderConfig struct {
	Workers int  `yaml:"workers"`  // parallel decoders used when loading several files
	LoadAll bool `yaml:"load_all"` // decode images as well as geometry
}

// GPUConfig selects the device used for materialization.
type GPUConfig struct {
	Backend              string `yaml:"backend"`
	ForceFallbackAdapter bool   `yaml:"force_fallback_adapter"`
}

// EvaluationConfig holds scene evaluation defaults.
type EvaluationConfig struct {
	Scene     int     `yaml:"scene"`     // -1 selects the document's default scene
	Animation int     `yaml:"animation"` // -1 evaluates the rest pose
	Time      float32 `yaml:"time"`
	Loop      bool    `yaml:"loop"`
	Skeletons bool    `yaml:"skeletons"`
}

// WindowConfig holds viewer window settings.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Profiling bool   `yaml:"profiling"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Loader: LoaderConfig{
			Workers: 4,
			LoadAll: true,
		},
		GPU: GPUConfig{
			Backend: BackendMemory,
		},
		Evaluation: EvaluationConfig{
			Scene:     -1,
			Animation: -1,
			Loop:      true,
		},
		Window: WindowConfig{
			Title:  "oxy-scene",
			Width:  1280,
			Height: 720,
		},
		Bindings: DefaultBindings(),
	}
}

// DefaultBindings returns the standard attribute slot assignment.
func DefaultBindings() map[string]uint32 {
	return map[string]uint32{
		"POSITION":   0,
		"NORMAL":     1,
		"TEXCOORD_0": 2,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Loader.Workers < 1 {
		return fmt.Errorf("loader.workers must be at least 1, got %d", c.Loader.Workers)
	}
	if !slices.Contains([]string{BackendMemory, BackendWGPU}, c.GPU.Backend) {
		return fmt.Errorf("gpu.backend must be %q or %q, got %q", BackendMemory, BackendWGPU, c.GPU.Backend)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, ok := c.Bindings["POSITION"]; !ok {
		return fmt.Errorf("bindings must assign a slot to POSITION")
	}
	return nil
}
