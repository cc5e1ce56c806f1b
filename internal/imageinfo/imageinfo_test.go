package imageinfo_test

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wallcrop/internal/imageinfo"
	"wallcrop/internal/services"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, path, 32, 18)

	w, h, err := imageinfo.Dimensions(path)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 32 || h != 18 {
		t.Fatalf("got %dx%d, want 32x18", w, h)
	}
}

func TestDimensionsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := imageinfo.Dimensions(path); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	if _, _, err := imageinfo.Dimensions(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestScanAndExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.webp", "a.png", ".hidden.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := imageinfo.Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.webp")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Scan mismatch (-want +got):\n%s", diff)
	}

	expanded, err := imageinfo.Expand([]string{filepath.Join(dir, "b.webp"), dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want = []string{filepath.Join(dir, "b.webp"), filepath.Join(dir, "a.png")}
	if diff := cmp.Diff(want, expanded); diff != "" {
		t.Fatalf("Expand mismatch (-want +got):\n%s", diff)
	}

	if _, err := imageinfo.Expand([]string{filepath.Join(dir, "notes.txt")}); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error for unsupported extension, got %v", err)
	}
}
