package wallpaper_test

import (
	"testing"

	"wallcrop/internal/geometry"
	"wallcrop/internal/wallpaper"
)

var square = geometry.MustAspectRatio("1x1")

func sampleInfo() wallpaper.Info {
	return wallpaper.Info{
		Filename: "a.webp",
		Width:    1920,
		Height:   1080,
		Faces:    []geometry.Face{{X: 800, Y: 400, W: 100, H: 100}},
	}
}

func TestGeometryFallsBackToDefault(t *testing.T) {
	info := sampleInfo()
	g, err := info.Geometry(square)
	if err != nil {
		t.Fatalf("Geometry returned error: %v", err)
	}
	if g.X != 310 {
		t.Fatalf("expected default crop at x=310, got %+v", g)
	}
	if info.HasGeometry(square) {
		t.Fatal("fallback must not record a geometry")
	}
}

func TestIsDefaultCrops(t *testing.T) {
	info := sampleInfo()
	ratios := []geometry.AspectRatio{square, geometry.MustAspectRatio("16x9")}

	ok, err := info.IsDefaultCrops(ratios)
	if err != nil || !ok {
		t.Fatalf("expected default crops, got %v %v", ok, err)
	}

	info.SetGeometry(square, geometry.Geometry{W: 1080, H: 1080, X: 0})
	ok, err = info.IsDefaultCrops(ratios)
	if err != nil || ok {
		t.Fatalf("expected modified crops, got %v %v", ok, err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	info := sampleInfo()
	info.SetGeometry(square, geometry.Geometry{W: 1080, H: 1080, X: 5})
	clone := info.Clone()
	clone.SetGeometry(square, geometry.Geometry{W: 1080, H: 1080, X: 9})
	clone.Faces[0].X = 0

	if g, _ := info.Geometry(square); g.X != 5 {
		t.Fatalf("clone mutated source geometry: %+v", g)
	}
	if info.Faces[0].X != 800 {
		t.Fatal("clone mutated source faces")
	}
}

func TestGeometryKeyIgnoresRatioSpelling(t *testing.T) {
	info := sampleInfo()
	info.SetGeometry(geometry.MustAspectRatio("1920x1080"), geometry.Geometry{W: 1920, H: 1080})
	if !info.HasGeometry(geometry.MustAspectRatio("16:9")) {
		t.Fatal("expected 16:9 lookup to find the 1920x1080 entry")
	}
}

func TestFaceFilter(t *testing.T) {
	info := sampleInfo()
	for _, tt := range []struct {
		name string
		want bool
	}{
		{"all", true}, {"one", true}, {"single", true}, {"zero", false}, {"many", false},
	} {
		f, ok := wallpaper.ParseFaceFilter(tt.name)
		if !ok {
			t.Fatalf("ParseFaceFilter(%q) failed", tt.name)
		}
		if got := f.Matches(info); got != tt.want {
			t.Fatalf("%s.Matches = %v, want %v", tt.name, got, tt.want)
		}
	}
	if _, ok := wallpaper.ParseFaceFilter("several"); ok {
		t.Fatal("expected unknown filter to fail")
	}
}
