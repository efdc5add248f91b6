package config

import (
	"fmt"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// validOutputs are the accepted output rendering modes.
var validOutputs = map[string]bool{
	"auto":     true,
	"text":     true,
	"json":     true,
	"markdown": true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.VersionDir == "" {
		return &core.ConfigError{Key: "version_dir", Value: "", Message: "is required"}
	}
	if c.StatePath == "" {
		return &core.ConfigError{Key: "state_path", Value: "", Message: "is required"}
	}
	if !validOutputs[c.Output] {
		return &core.ConfigError{
			Key:     "output",
			Value:   c.Output,
			Message: "must be one of auto, text, json, markdown",
		}
	}
	if err := c.AutoSave.Validate(); err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	return nil
}
