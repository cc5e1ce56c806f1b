package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wallcrop/internal/config"
	"wallcrop/internal/geometry"
	"wallcrop/internal/logging"
	"wallcrop/internal/services"
	"wallcrop/internal/testsupport"
	"wallcrop/internal/wallpaper"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	return &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		baseDir:    base,
	}
}

// saveConfig persists edits made to env.cfg so the CLI sees them.
func (e *cliTestEnv) saveConfig(t *testing.T) {
	t.Helper()
	if err := e.cfg.Save(e.configPath); err != nil {
		t.Fatalf("save config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func customised(name string, width, height uint32, g geometry.Geometry) wallpaper.Info {
	info := wallpaper.Info{Filename: name, Width: width, Height: height}
	info.SetGeometry(geometry.MustAspectRatio("1920x1080"), g)
	return info
}

func TestVersionFlag(t *testing.T) {
	out, _, err := runCLI(t, []string{"--version"}, "")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	requireContains(t, out, "wallcrop version "+version)
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.StorePath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestAddResolutionPrintsReviewList(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithResolutions(config.Resolution{Name: "HD", Ratio: "1920x1080"}))
	testsupport.SeedStore(t, env.cfg,
		wallpaper.Info{Filename: "plain.png", Width: 4000, Height: 1500},
		customised("zeta.png", 4000, 1500, geometry.Geometry{W: 2666, H: 1500, X: 1334}),
		customised("alpha.png", 4000, 1500, geometry.Geometry{W: 2666, H: 1500, X: 0}),
	)

	out, _, err := runCLI(t, []string{"add-resolution", "square", "1:1", "--no-preview"}, env.configPath)
	if err != nil {
		t.Fatalf("add-resolution: %v", err)
	}
	if out != "alpha.png\nzeta.png\n" {
		t.Fatalf("unexpected review list: %q", out)
	}

	cfg, _, _, err := config.Load(env.configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	square := geometry.MustAspectRatio("1x1")
	if !cfg.HasResolution(square) {
		t.Fatalf("expected config to gain 1x1, got %+v", cfg.Resolutions)
	}
	if got := cfg.Resolutions[len(cfg.Resolutions)-1].Name; got != "Square" {
		t.Fatalf("resolution name = %q, want Square", got)
	}

	info, ok := testsupport.MustLoadStore(t, cfg).Get("zeta.png")
	if !ok {
		t.Fatal("zeta.png missing")
	}
	if g, _ := info.Geometry(square); g != (geometry.Geometry{W: 1500, H: 1500, X: 1917}) {
		t.Fatalf("unexpected re-centered crop %v", g)
	}

	out, _, err = runCLI(t, []string{"add-resolution", "square", "1:1", "--no-preview"}, env.configPath)
	if err != nil {
		t.Fatalf("second add-resolution: %v", err)
	}
	if out != "" {
		t.Fatalf("second run should review nothing, got %q", out)
	}
}

func TestAddResolutionRejectsInvalidRatio(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"add-resolution", "bad", "16by9"}, env.configPath)
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	if services.ExitCode(err) != 1 {
		t.Fatalf("exit code = %d, want 1", services.ExitCode(err))
	}
}

func TestAddDetectsUntrackedWallpapers(t *testing.T) {
	env := setupCLITestEnv(t)
	script := filepath.Join(env.baseDir, "detect.sh")
	body := "#!/bin/sh\nfor f in \"$@\"; do echo '[]'; done\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write detector: %v", err)
	}
	env.cfg.Tools.Detector = script
	env.cfg.Tools.Editor = ""
	env.saveConfig(t)
	testsupport.WritePNG(t, filepath.Join(env.cfg.Paths.WallpapersDir, "x.png"), 64, 36)

	out, _, err := runCLI(t, []string{"add"}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Processed 1 wallpapers")
	requireContains(t, out, "1 need review")

	info, ok := testsupport.MustLoadStore(t, env.cfg).Get("x.png")
	if !ok {
		t.Fatal("x.png was not recorded")
	}
	if info.Width != 64 || info.Height != 36 || len(info.Faces) != 0 {
		t.Fatalf("unexpected record %+v", info)
	}
}

func TestAddWarnsAboutDuplicates(t *testing.T) {
	env := setupCLITestEnv(t)
	wall := env.cfg.Paths.WallpapersDir
	testsupport.WritePNG(t, filepath.Join(wall, "a.png"), 64, 36)
	testsupport.WritePNG(t, filepath.Join(wall, "b.png"), 64, 36)
	testsupport.SeedStore(t, env.cfg,
		wallpaper.Info{Filename: "a.png", Width: 64, Height: 36},
		wallpaper.Info{Filename: "b.png", Width: 64, Height: 36},
	)

	out, _, err := runCLI(t, []string{"add", "--no-preview"}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if code := services.ExitCode(err); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	requireContains(t, out, "Processed 0 wallpapers")

	logData, readErr := os.ReadFile(filepath.Join(env.cfg.Paths.LogDir, logging.LogFileName))
	if readErr != nil {
		t.Fatalf("read log: %v", readErr)
	}
	requireContains(t, string(logData), `"msg":"duplicate wallpapers found"`)
	requireContains(t, string(logData), `"files":"a.png, b.png"`)
}

func TestListFiltersByFaces(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStorePath("wallpapers.db"))
	testsupport.SeedStore(t, env.cfg,
		wallpaper.Info{Filename: "none.png", Width: 2000, Height: 1000},
		wallpaper.Info{Filename: "one.png", Width: 2000, Height: 1000, Faces: []geometry.Face{{X: 10, Y: 10, W: 20, H: 20}}},
	)

	out, _, err := runCLI(t, []string{"list", "--faces", "one"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "one.png")
	if strings.Contains(out, "none.png") {
		t.Fatalf("face filter leaked none.png:\n%s", out)
	}

	if _, _, err := runCLI(t, []string{"list", "--faces", "lots"}, env.configPath); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error for bad filter, got %v", err)
	}
}

func TestEditAlignsAndSaves(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.SeedStore(t, env.cfg, wallpaper.Info{Filename: "plain.png", Width: 2000, Height: 1000})

	out, _, err := runCLI(t, []string{"edit", "plain.png", "--ratio", "16x9", "--align", "end"}, env.configPath)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	requireContains(t, out, "1777x1000+223+0")

	info, _ := testsupport.MustLoadStore(t, env.cfg).Get("plain.png")
	if g, _ := info.Geometry(geometry.MustAspectRatio("16x9")); g.X != 223 {
		t.Fatalf("saved crop = %v, want x=223", g)
	}

	if _, _, err := runCLI(t, []string{"edit", "plain.png", "--candidate", "9"}, env.configPath); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error for bad candidate, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"edit", "absent.png"}, env.configPath); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEditFiltersAndNavigates(t *testing.T) {
	env := setupCLITestEnv(t)
	wall := env.cfg.Paths.WallpapersDir
	oneFace := []geometry.Face{{X: 10, Y: 10, W: 20, H: 20}}
	testsupport.SeedStore(t, env.cfg,
		wallpaper.Info{Filename: "a.png", Width: 2000, Height: 1000},
		wallpaper.Info{Filename: "b.png", Width: 2000, Height: 1000, Faces: oneFace},
		wallpaper.Info{Filename: "c.png", Width: 2000, Height: 1000},
	)
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"a.png", "b.png", "c.png"} {
		path := filepath.Join(wall, name)
		testsupport.WriteFile(t, path, 8)
		mtime := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	out, _, err := runCLI(t, []string{"edit", "--list"}, env.configPath)
	if err != nil {
		t.Fatalf("edit --list: %v", err)
	}
	requireContains(t, out, "* c.png\n  b.png\n  a.png\n")
	requireContains(t, out, "c.png (2000x1000, 0 faces) [1/3]")

	out, _, err = runCLI(t, []string{"edit", "--faces", "one"}, env.configPath)
	if err != nil {
		t.Fatalf("edit --faces: %v", err)
	}
	requireContains(t, out, "b.png (2000x1000, 1 faces) [1/1]")

	out, _, err = runCLI(t, []string{"edit", wall, "--name", "A"}, env.configPath)
	if err != nil {
		t.Fatalf("edit --name: %v", err)
	}
	requireContains(t, out, "a.png (2000x1000, 0 faces) [1/1]")

	out, _, err = runCLI(t, []string{"edit", "--select", "b.png", "--offset", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("edit --select --offset: %v", err)
	}
	requireContains(t, out, "a.png (2000x1000, 0 faces) [3/3]")

	out, _, err = runCLI(t, []string{"edit", "--offset", "-1"}, env.configPath)
	if err != nil {
		t.Fatalf("edit --offset -1: %v", err)
	}
	requireContains(t, out, "a.png (2000x1000, 0 faces) [3/3]")

	out, _, err = runCLI(t, []string{"edit", "--unmodified", "all", "--ratio", "16x9", "--align", "end"}, env.configPath)
	if err != nil {
		t.Fatalf("edit --unmodified: %v", err)
	}
	requireContains(t, out, "Saved c.png; next unmodified wallpaper:")
	requireContains(t, out, "b.png (2000x1000, 1 faces) [1/2]")
	info, _ := testsupport.MustLoadStore(t, env.cfg).Get("c.png")
	if g, _ := info.Geometry(geometry.MustAspectRatio("16x9")); g.X != 223 {
		t.Fatalf("saved crop = %v, want x=223", g)
	}

	out, _, err = runCLI(t, []string{"edit", "c.png", "--ratio", "16x9", "--align", "end"}, env.configPath)
	if err != nil {
		t.Fatalf("edit unchanged: %v", err)
	}
	requireContains(t, out, "Crop unchanged")

	if _, _, err := runCLI(t, []string{"edit", "--faces", "lots"}, env.configPath); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error for bad filter, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"edit", "--select", "zzz.png"}, env.configPath); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown selection, got %v", err)
	}
}

func TestDuplicatesReportsGroups(t *testing.T) {
	env := setupCLITestEnv(t)
	wall := env.cfg.Paths.WallpapersDir
	testsupport.WritePNG(t, filepath.Join(wall, "a.png"), 64, 36)
	testsupport.WritePNG(t, filepath.Join(wall, "b.png"), 64, 36)
	testsupport.SeedStore(t, env.cfg,
		wallpaper.Info{Filename: "a.png", Width: 64, Height: 36},
		wallpaper.Info{Filename: "b.png", Width: 64, Height: 36},
		wallpaper.Info{Filename: "gone.png", Width: 64, Height: 36},
	)

	out, _, err := runCLI(t, []string{"duplicates"}, env.configPath)
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	requireContains(t, out, "exact: a.png, b.png")
	requireContains(t, out, "missing: gone.png")
}

func TestDoctorChecksTools(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "== Tools ==")
	requireContains(t, out, "[OK]")
	requireContains(t, out, "[WARN]")

	env.cfg.Tools.Detector = "clearly-not-present-binary"
	env.saveConfig(t)
	out, _, err = runCLI(t, []string{"doctor"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireContains(t, out, "[ERROR]")
}
