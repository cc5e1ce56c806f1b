// Package imageinfo probes image headers and discovers image files on disk.
package imageinfo

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"wallcrop/internal/services"
)

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// IsImage reports whether path has a recognized image extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Dimensions reads only the image header and returns width and height.
func Dimensions(path string) (uint32, uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, services.Wrap(services.ErrNotFound, "imageinfo", "open", filepath.Base(path), err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, services.Wrap(services.ErrInput, "imageinfo", "decode header", filepath.Base(path), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, services.Wrap(services.ErrInput, "imageinfo", "decode header",
			fmt.Sprintf("%s: %s image reports %dx%d", filepath.Base(path), format, cfg.Width, cfg.Height), nil)
	}
	return uint32(cfg.Width), uint32(cfg.Height), nil
}

// Scan lists the image files directly inside dir, sorted by name. Hidden
// files are skipped.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !IsImage(name) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// Expand resolves each argument to absolute image paths: directories are
// replaced by their images, files must carry an image extension. The result
// keeps first-seen order and drops repeats.
func Expand(paths []string) ([]string, error) {
	seen := make(map[string]struct{}, len(paths))
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, raw := range paths {
		abs, err := filepath.Abs(raw)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", raw, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, services.Wrap(services.ErrNotFound, "imageinfo", "stat", raw, err)
		}
		if info.IsDir() {
			files, err := Scan(abs)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
			continue
		}
		if !IsImage(abs) {
			return nil, services.Wrap(services.ErrInput, "imageinfo", "expand",
				fmt.Sprintf("unsupported extension %q", filepath.Ext(abs)), nil)
		}
		add(abs)
	}
	return out, nil
}
