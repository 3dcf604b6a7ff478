package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays the YAML document at path onto cfg. Keys absent from
// the file keep their current values; unknown keys are rejected.
func LoadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Reloadable is the subset of configuration that may change at runtime
type Reloadable struct {
	LogLevel         string
	DefaultNodeLimit int
	DefaultEdgeLimit int
	MaxListLimit     int
}

// Reloadable returns the runtime-adjustable settings
func (c *Config) Reloadable() Reloadable {
	return Reloadable{
		LogLevel:         c.LogLevel,
		DefaultNodeLimit: c.DefaultNodeLimit,
		DefaultEdgeLimit: c.DefaultEdgeLimit,
		MaxListLimit:     c.MaxListLimit,
	}
}
