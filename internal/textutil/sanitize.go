package textutil

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeFilename returns the NFC form of name with surrounding
// whitespace removed.
func NormalizeFilename(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Filename returns the normalized base name of path, the store key for it.
func Filename(path string) string {
	return NormalizeFilename(filepath.Base(path))
}

// ReplaceExt swaps the extension of path for ext (with or without a dot).
// An empty ext leaves path unchanged.
func ReplaceExt(path, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}

// WithDir moves the base name of path into dir.
func WithDir(path, dir string) string {
	return filepath.Join(dir, filepath.Base(path))
}

// TitleLabel title-cases a display label such as a resolution name.
func TitleLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return cases.Title(language.Und, cases.NoLower).String(value)
}
