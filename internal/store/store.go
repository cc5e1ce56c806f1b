package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wallcrop/internal/geometry"
	"wallcrop/internal/services"
	"wallcrop/internal/textutil"
	"wallcrop/internal/wallpaper"
)

// Options tunes Load.
type Options struct {
	// RequireExisting turns a missing store file into ErrNotFound instead of
	// an empty table.
	RequireExisting bool
}

// table is what a backend reads: the records plus the resolution columns in
// their persisted order.
type table struct {
	ratios  []geometry.AspectRatio
	records []wallpaper.Info
}

type backend interface {
	load(ctx context.Context) (table, error)
	save(ctx context.Context, t table) error
}

// Store is the in-memory metadata table.
type Store struct {
	path    string
	backend backend
	exists  bool
	ratios  []geometry.AspectRatio
	entries map[string]wallpaper.Info
}

// Load reads the store at path. The backend is chosen by extension.
func Load(ctx context.Context, path string, opts Options) (*Store, error) {
	s := &Store{
		path:    path,
		backend: backendFor(path),
		entries: make(map[string]wallpaper.Info),
	}
	_, err := os.Stat(path)
	switch {
	case err == nil:
		s.exists = true
	case errors.Is(err, fs.ErrNotExist):
		if opts.RequireExisting {
			return nil, services.Wrap(services.ErrNotFound, "store", "load", path, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("stat store: %w", err)
	}

	t, err := s.backend.load(ctx)
	if err != nil {
		return nil, err
	}
	s.ratios = t.ratios
	for _, info := range t.records {
		key := textutil.NormalizeFilename(info.Filename)
		if _, dup := s.entries[key]; dup {
			return nil, services.Wrap(services.ErrInput, "store", "load", fmt.Sprintf("duplicate filename %q", key), nil)
		}
		info.Filename = key
		s.entries[key] = info
	}
	return s, nil
}

func backendFor(path string) backend {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return &sqliteBackend{path: path}
	default:
		return &csvBackend{path: path}
	}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Exists reports whether the backing file was present when loaded.
func (s *Store) Exists() bool { return s.exists }

// Ratios returns the resolution columns found in the backing file.
func (s *Store) Ratios() []geometry.AspectRatio {
	return append([]geometry.AspectRatio(nil), s.ratios...)
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.entries) }

// Get returns a copy of the record for filename.
func (s *Store) Get(filename string) (wallpaper.Info, bool) {
	info, ok := s.entries[textutil.NormalizeFilename(textutil.Filename(filename))]
	if !ok {
		return wallpaper.Info{}, false
	}
	return info.Clone(), true
}

// Insert adds or replaces the record for info.Filename.
func (s *Store) Insert(info wallpaper.Info) {
	info = info.Clone()
	info.Filename = textutil.NormalizeFilename(textutil.Filename(info.Filename))
	s.entries[info.Filename] = info
}

// Filenames returns every key in sorted order.
func (s *Store) Filenames() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns copies of every record sorted by filename.
func (s *Store) Records() []wallpaper.Info {
	names := s.Filenames()
	out := make([]wallpaper.Info, 0, len(names))
	for _, name := range names {
		out = append(out, s.entries[name].Clone())
	}
	return out
}

// Save rewrites the whole table with one column per ratio in the given
// order. Ratios a record has no crop for get the cropper's default.
func (s *Store) Save(ctx context.Context, ratios []geometry.AspectRatio) error {
	if len(ratios) == 0 {
		return services.Wrap(services.ErrConfiguration, "store", "save", "no resolutions to save", nil)
	}
	records := s.Records()
	for i := range records {
		for _, ratio := range ratios {
			g, err := records[i].Geometry(ratio)
			if err != nil {
				return services.Wrap(services.ErrInput, "store", "save", records[i].Filename, err)
			}
			records[i].SetGeometry(ratio, g)
		}
	}
	if err := s.backend.save(ctx, table{ratios: ratios, records: records}); err != nil {
		return err
	}
	s.exists = true
	s.ratios = append([]geometry.AspectRatio(nil), ratios...)
	return nil
}
