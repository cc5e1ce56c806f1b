package config

import (
	"errors"
	"fmt"

	"wallcrop/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
	}
	if err := c.validateResolutions(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
	}
	if err := c.validateLogging(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MinWidth <= 0 || c.Pipeline.MinHeight <= 0 {
		return errors.New("pipeline.min_width and pipeline.min_height must be positive")
	}
	switch c.Pipeline.Format {
	case "", "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("pipeline.format: unsupported value %q", c.Pipeline.Format)
	}
	return nil
}

func (c *Config) validateResolutions() error {
	if len(c.ratios) == 0 {
		return errors.New("at least one [[resolutions]] entry is required")
	}
	for i := range c.ratios {
		for j := i + 1; j < len(c.ratios); j++ {
			if c.ratios[i].Equal(c.ratios[j]) {
				return fmt.Errorf("resolutions %q and %q have the same aspect ratio", c.Resolutions[i].Ratio, c.Resolutions[j].Ratio)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
