package textutil_test

import (
	"path/filepath"
	"testing"

	"wallcrop/internal/textutil"
)

func TestNormalizeFilenameComposes(t *testing.T) {
	decomposed := "Cafe\u0301.webp"
	composed := "Caf\u00e9.webp"
	if got := textutil.NormalizeFilename(decomposed); got != composed {
		t.Fatalf("expected NFC form %q, got %q", composed, got)
	}
	if got := textutil.Filename(filepath.Join("/walls", decomposed)); got != composed {
		t.Fatalf("expected normalized base name, got %q", got)
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path, ext, want string
	}{
		{"/tmp/a.png", "webp", "/tmp/a.webp"},
		{"/tmp/a.png", ".jpg", "/tmp/a.jpg"},
		{"/tmp/a.png", "", "/tmp/a.png"},
		{"/tmp/a", "png", "/tmp/a.png"},
	}
	for _, tt := range tests {
		if got := textutil.ReplaceExt(tt.path, tt.ext); got != tt.want {
			t.Fatalf("ReplaceExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestWithDir(t *testing.T) {
	if got := textutil.WithDir("/downloads/a.png", "/walls"); got != filepath.Join("/walls", "a.png") {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestTitleLabel(t *testing.T) {
	if got := textutil.TitleLabel("ultrawide monitor"); got != "Ultrawide Monitor" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := textutil.TitleLabel("HD"); got != "HD" {
		t.Fatalf("expected acronym preserved, got %q", got)
	}
}
