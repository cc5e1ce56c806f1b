package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"wallcrop/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The result goes through config.Load, so it is normalized and validated
// exactly like a user's file.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WallpapersDir = filepath.Join(base, "wallpapers")
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Pipeline.PollIntervalMS = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	path := filepath.Join(base, "config.toml")
	if err := builder.cfg.Save(path); err != nil {
		t.Fatalf("save test config: %v", err)
	}
	t.Setenv("WALLCROP_WALLPAPERS_DIR", "")
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load test config: %v", err)
	}
	if err := loaded.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return loaded
}

// WithResolutions replaces the configured resolutions.
func WithResolutions(resolutions ...config.Resolution) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolutions = resolutions
	}
}

// WithFormat sets the pipeline output format.
func WithFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Format = format
	}
}

// WithMinSize overrides the minimum output size.
func WithMinSize(width, height int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.MinWidth = width
		b.cfg.Pipeline.MinHeight = height
	}
}

// WithStorePath places the metadata store at name inside the base directory.
// The extension picks the backend.
func WithStorePath(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.StorePath = filepath.Join(b.baseDir, name)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external tools are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			tools := b.cfg.Tools
			names = []string{tools.Cwebp, tools.Jpegoptim, tools.Oxipng, tools.Upscaler, tools.Detector}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WallpapersDir)
}
