package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"wallcrop/internal/fileutil"
	"wallcrop/internal/geometry"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	WallpapersDir string `toml:"wallpapers_dir"`
	StorePath     string `toml:"store_path"`
	TempDir       string `toml:"temp_dir"`
	LogDir        string `toml:"log_dir"`
}

// Pipeline contains settings for the add pipeline.
type Pipeline struct {
	MinWidth       int    `toml:"min_width"`
	MinHeight      int    `toml:"min_height"`
	Format         string `toml:"format"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	Cwebp     string `toml:"cwebp"`
	Jpegoptim string `toml:"jpegoptim"`
	Oxipng    string `toml:"oxipng"`
	Upscaler  string `toml:"upscaler"`
	Detector  string `toml:"detector"`
	Editor    string `toml:"editor"`
}

// Resolution is one named target aspect ratio.
type Resolution struct {
	Name  string `toml:"name"`
	Ratio string `toml:"ratio"`
}

// Editor contains settings forwarded to the interactive crop editor.
type Editor struct {
	ShowFaces bool `toml:"show_faces"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for wallcrop.
//
// Configuration sections by subsystem:
//   - Paths: wallpaper directory, metadata store, scratch space, logs
//   - Pipeline: minimum output size, output format, file polling interval
//   - Tools: optimizer, upscaler, face detector and editor binaries
//   - Resolutions: ordered target aspect ratios (one store column each)
//   - Editor: options handed to the crop editor
//   - Logging: log format and level
type Config struct {
	Paths       Paths        `toml:"paths"`
	Pipeline    Pipeline     `toml:"pipeline"`
	Tools       Tools        `toml:"tools"`
	Resolutions []Resolution `toml:"resolutions"`
	Editor      Editor       `toml:"editor"`
	Logging     Logging      `toml:"logging"`

	ratios []geometry.AspectRatio
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// A file listing resolutions replaces the defaults rather than extending them.
		defaults := cfg.Resolutions
		cfg.Resolutions = nil
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		if len(cfg.Resolutions) == 0 {
			cfg.Resolutions = defaults
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("wallcrop.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WallpapersDir, c.Paths.TempDir, filepath.Dir(c.Paths.StorePath)}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Save writes the configuration to path as TOML, replacing the file atomically.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// AspectRatios returns the configured resolutions in file order.
func (c *Config) AspectRatios() []geometry.AspectRatio {
	return append([]geometry.AspectRatio(nil), c.ratios...)
}

// SortedResolutions returns the configured resolutions widest first. This is
// the column order of the metadata store.
func (c *Config) SortedResolutions() []geometry.AspectRatio {
	sorted := c.AspectRatios()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value() > sorted[j].Value()
	})
	return sorted
}

// HasResolution reports whether ratio is already configured.
func (c *Config) HasResolution(ratio geometry.AspectRatio) bool {
	for _, r := range c.ratios {
		if r.Equal(ratio) {
			return true
		}
	}
	return false
}

// ClosestResolution returns the configured resolution nearest to ratio,
// excluding ratio itself.
func (c *Config) ClosestResolution(ratio geometry.AspectRatio) (geometry.AspectRatio, bool) {
	return geometry.Closest(ratio, c.ratios)
}

// AddResolution appends a named resolution. It reports false when an equal
// ratio is already configured.
func (c *Config) AddResolution(name string, ratio geometry.AspectRatio) bool {
	if c.HasResolution(ratio) {
		return false
	}
	name = strings.TrimSpace(name)
	c.Resolutions = append(c.Resolutions, Resolution{Name: name, Ratio: ratio.String()})
	c.ratios = append(c.ratios, ratio.WithName(name))
	return true
}

// PollInterval is the delay between file existence checks.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Pipeline.PollIntervalMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
