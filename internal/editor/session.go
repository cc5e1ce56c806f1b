// Package editor holds the state behind the interactive crop editor: the
// list of files under review, the record being edited, the active ratio
// and the geometry operations the editor exposes.
//
// A Session keeps two copies of the current record. Source is what the
// store holds; Current carries unsaved edits. Save writes Current back and
// persists the store.
package editor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"wallcrop/internal/geometry"
	"wallcrop/internal/services"
	"wallcrop/internal/store"
	"wallcrop/internal/textutil"
	"wallcrop/internal/wallpaper"
)

// Options narrows the file list.
type Options struct {
	// Faces keeps images by detected face count.
	Faces wallpaper.FaceFilter
	// Name keeps images whose filename contains it, case-insensitively.
	Name string
	// Unmodified keeps images whose crops for these ratios are still the
	// defaults.
	Unmodified []geometry.AspectRatio
}

// RatioOption is one entry of the ratio selector.
type RatioOption struct {
	Ratio geometry.AspectRatio
	// Modified reports an unsaved change to this ratio's crop.
	Modified bool
}

// Session is the editor state for one list of images.
type Session struct {
	store       *store.Store
	resolutions []geometry.AspectRatio
	files       []string
	index       int
	ratio       geometry.AspectRatio
	source      wallpaper.Info
	current     wallpaper.Info
}

// Open filters files against the store, orders them newest first and loads
// the first one. resolutions must be non-empty; the first is the initial
// ratio.
func Open(s *store.Store, files []string, resolutions []geometry.AspectRatio, opts Options) (*Session, error) {
	if len(resolutions) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "editor", "open", "no resolutions configured", nil)
	}
	kept := filterFiles(s, files, opts)
	if len(kept) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "editor", "open", "no wallpapers match", nil)
	}
	sortNewestFirst(kept)

	sess := &Session{
		store:       s,
		resolutions: append([]geometry.AspectRatio(nil), resolutions...),
		files:       kept,
		ratio:       resolutions[0],
	}
	if err := sess.load(0); err != nil {
		return nil, err
	}
	return sess, nil
}

func filterFiles(s *store.Store, files []string, opts Options) []string {
	name := strings.ToLower(strings.TrimSpace(opts.Name))
	var out []string
	for _, f := range files {
		info, ok := s.Get(f)
		if !ok {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(info.Filename), name) {
			continue
		}
		if len(opts.Unmodified) > 0 {
			isDefault, err := info.IsDefaultCrops(opts.Unmodified)
			if err != nil || !isDefault {
				continue
			}
		}
		if !opts.Faces.Matches(info) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func sortNewestFirst(files []string) {
	mtimes := make(map[string]int64, len(files))
	for _, f := range files {
		if st, err := os.Stat(f); err == nil {
			mtimes[f] = st.ModTime().UnixNano()
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return mtimes[files[i]] > mtimes[files[j]]
	})
}

func (s *Session) load(index int) error {
	info, ok := s.store.Get(s.files[index])
	if !ok {
		return services.Wrap(services.ErrNotFound, "editor", "load", textutil.Filename(s.files[index]), fs.ErrNotExist)
	}
	s.index = index
	s.source = info
	s.current = info.Clone()
	return nil
}

// Files returns the file list in display order.
func (s *Session) Files() []string { return append([]string(nil), s.files...) }

// Index is the position of the current file.
func (s *Session) Index() int { return s.index }

// Source is the stored record of the current file.
func (s *Session) Source() wallpaper.Info { return s.source.Clone() }

// Current is the record with unsaved edits.
func (s *Session) Current() wallpaper.Info { return s.current.Clone() }

// Ratio is the active aspect ratio.
func (s *Session) Ratio() geometry.AspectRatio { return s.ratio }

// Resolutions returns every configured ratio.
func (s *Session) Resolutions() []geometry.AspectRatio {
	return append([]geometry.AspectRatio(nil), s.resolutions...)
}

// SetRatio switches the active ratio. It must be one of Resolutions.
func (s *Session) SetRatio(ratio geometry.AspectRatio) error {
	for _, r := range s.resolutions {
		if r.Equal(ratio) {
			s.ratio = r
			return nil
		}
	}
	return services.Wrap(services.ErrInput, "editor", "set ratio", fmt.Sprintf("ratio %s is not configured", ratio), nil)
}

// GetGeometry returns the crop for the active ratio.
func (s *Session) GetGeometry() (geometry.Geometry, error) {
	return s.current.Geometry(s.ratio)
}

// SetGeometry records g for the active ratio. g must fit the image and have
// the active ratio's crop size.
func (s *Session) SetGeometry(g geometry.Geometry) error {
	if !g.InBounds(s.current.Width, s.current.Height) {
		return services.Wrap(services.ErrInput, "editor", "set geometry",
			fmt.Sprintf("%s exceeds %dx%d", g, s.current.Width, s.current.Height), nil)
	}
	c, err := s.current.Cropper()
	if err != nil {
		return err
	}
	w, h, _, err := c.CropSize(s.ratio)
	if err != nil {
		return err
	}
	if g.W != w || g.H != h {
		return services.Wrap(services.ErrInput, "editor", "set geometry",
			fmt.Sprintf("%s is not a %s crop (want %dx%d)", g, s.ratio, w, h), nil)
	}
	s.current.SetGeometry(s.ratio, g)
	return nil
}

// CropCandidates returns the cropper's candidates for the active ratio.
func (s *Session) CropCandidates() ([]geometry.Geometry, error) {
	c, err := s.current.Cropper()
	if err != nil {
		return nil, err
	}
	return c.Candidates(s.ratio)
}

// CandidateGeometries returns the candidates with repeats removed, in order.
func (s *Session) CandidateGeometries() ([]geometry.Geometry, error) {
	candidates, err := s.CropCandidates()
	if err != nil {
		return nil, err
	}
	seen := make(map[geometry.Geometry]struct{}, len(candidates))
	out := candidates[:0]
	for _, g := range candidates {
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out, nil
}

// MoveGeometryBy returns the current crop shifted by delta along its axis.
// The session is not modified.
func (s *Session) MoveGeometryBy(delta int) (geometry.Geometry, error) {
	g, err := s.GetGeometry()
	if err != nil {
		return geometry.Geometry{}, err
	}
	return g.MoveBy(delta, s.current.Width, s.current.Height), nil
}

// AlignStart returns the current crop anchored to the leading edge.
func (s *Session) AlignStart() (geometry.Geometry, error) {
	return s.align(geometry.Geometry.AlignStart)
}

// AlignCenter returns the current crop centered on its axis.
func (s *Session) AlignCenter() (geometry.Geometry, error) {
	return s.align(geometry.Geometry.AlignCenter)
}

// AlignEnd returns the current crop anchored to the trailing edge.
func (s *Session) AlignEnd() (geometry.Geometry, error) {
	return s.align(geometry.Geometry.AlignEnd)
}

func (s *Session) align(fn func(geometry.Geometry, uint32, uint32) geometry.Geometry) (geometry.Geometry, error) {
	g, err := s.GetGeometry()
	if err != nil {
		return geometry.Geometry{}, err
	}
	return fn(g, s.current.Width, s.current.Height), nil
}

// ImageRatios lists the ratios worth offering for the current image. A ratio
// equal to the image's own has only one possible crop and is left out.
func (s *Session) ImageRatios() ([]RatioOption, error) {
	var out []RatioOption
	for _, r := range s.resolutions {
		if r.MatchesImage(s.current.Width, s.current.Height) {
			continue
		}
		cur, err := s.current.Geometry(r)
		if err != nil {
			return nil, err
		}
		src, err := s.source.Geometry(r)
		if err != nil {
			return nil, err
		}
		out = append(out, RatioOption{Ratio: r, Modified: cur != src})
	}
	return out, nil
}

// IsModified reports unsaved edits on the current record.
func (s *Session) IsModified() bool {
	for _, r := range s.resolutions {
		cur, errCur := s.current.Geometry(r)
		src, errSrc := s.source.Geometry(r)
		if errCur != nil || errSrc != nil || cur != src {
			return true
		}
	}
	return false
}

// Next moves to the following file, wrapping to the first. Unsaved edits
// are discarded.
func (s *Session) Next() error {
	return s.load((s.index + 1) % len(s.files))
}

// Prev moves to the preceding file, wrapping to the last. Unsaved edits are
// discarded.
func (s *Session) Prev() error {
	return s.load((s.index + len(s.files) - 1) % len(s.files))
}

// Select jumps to filename, given as a bare name or a path. Names match in
// any Unicode normal form.
func (s *Session) Select(filename string) error {
	key := textutil.Filename(filename)
	for i, f := range s.files {
		if textutil.Filename(f) == key {
			return s.load(i)
		}
	}
	return services.Wrap(services.ErrNotFound, "editor", "select", filename, nil)
}

// Remove drops the current file from the list and loads the one that took
// its place. Removing the last remaining file is an error.
func (s *Session) Remove() error {
	if len(s.files) == 1 {
		return services.Wrap(services.ErrInput, "editor", "remove", "cannot remove the only wallpaper", nil)
	}
	s.files = append(s.files[:s.index], s.files[s.index+1:]...)
	if s.index >= len(s.files) {
		s.index = 0
	}
	return s.load(s.index)
}

// Save writes the current record into the store and persists it with
// ratios as the column order.
func (s *Session) Save(ctx context.Context, ratios []geometry.AspectRatio) error {
	s.store.Insert(s.current)
	if err := s.store.Save(ctx, ratios); err != nil {
		return err
	}
	s.source = s.current.Clone()
	return nil
}
