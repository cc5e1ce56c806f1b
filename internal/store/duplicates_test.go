package store_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wallcrop/internal/store"
	"wallcrop/internal/wallpaper"
)

func writeGradient(t *testing.T, path string, w, h int, descending bool) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			if descending {
				v = 255 - v
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeGradient(t, filepath.Join(dir, "a.png"), 90, 80, true)
	copyFile(t, filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png"))
	writeGradient(t, filepath.Join(dir, "c.png"), 180, 160, true)
	writeGradient(t, filepath.Join(dir, "d.png"), 90, 80, false)

	s, err := store.Load(context.Background(), filepath.Join(dir, "wallpapers.csv"), store.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "gone.png"} {
		s.Insert(wallpaper.Info{Filename: name, Width: 90, Height: 80})
	}

	report, err := s.FindDuplicates(context.Background(), dir)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	want := store.DuplicateReport{
		Groups: []store.DuplicateGroup{
			{Kind: store.DuplicateExact, Filenames: []string{"a.png", "b.png"}},
			{Kind: store.DuplicateSimilar, Filenames: []string{"a.png", "b.png", "c.png"}},
		},
		Missing: []string{"gone.png"},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 5 {
		t.Fatalf("store mutated: len=%d", s.Len())
	}
}
