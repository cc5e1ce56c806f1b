package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wallcrop/internal/geometry"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeTools()
	if err := c.normalizeResolutions(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("WALLCROP_WALLPAPERS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.WallpapersDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.WallpapersDir) == "" {
		c.Paths.WallpapersDir = defaultWallpapersDir
	}
	var err error
	if c.Paths.WallpapersDir, err = expandPath(c.Paths.WallpapersDir); err != nil {
		return fmt.Errorf("paths.wallpapers_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StorePath) == "" {
		c.Paths.StorePath = filepath.Join(c.Paths.WallpapersDir, defaultStoreFile)
	}
	if c.Paths.StorePath, err = expandPath(c.Paths.StorePath); err != nil {
		return fmt.Errorf("paths.store_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	c.Pipeline.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Pipeline.Format), "."))
	if c.Pipeline.PollIntervalMS <= 0 {
		c.Pipeline.PollIntervalMS = defaultPollIntervalMS
	}
}

func (c *Config) normalizeTools() {
	defaults := Default().Tools
	pick := func(value, fallback string) string {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
		return fallback
	}
	c.Tools.Cwebp = pick(c.Tools.Cwebp, defaults.Cwebp)
	c.Tools.Jpegoptim = pick(c.Tools.Jpegoptim, defaults.Jpegoptim)
	c.Tools.Oxipng = pick(c.Tools.Oxipng, defaults.Oxipng)
	c.Tools.Upscaler = pick(c.Tools.Upscaler, defaults.Upscaler)
	c.Tools.Detector = pick(c.Tools.Detector, defaults.Detector)
	c.Tools.Editor = strings.TrimSpace(c.Tools.Editor)
}

func (c *Config) normalizeResolutions() error {
	c.ratios = c.ratios[:0]
	for i, res := range c.Resolutions {
		ratio, err := geometry.ParseAspectRatio(res.Ratio)
		if err != nil {
			return fmt.Errorf("resolutions[%d]: %w", i, err)
		}
		c.Resolutions[i].Name = strings.TrimSpace(res.Name)
		c.Resolutions[i].Ratio = strings.TrimSpace(res.Ratio)
		c.ratios = append(c.ratios, ratio.WithName(c.Resolutions[i].Name))
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
