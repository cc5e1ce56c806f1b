// Package wallpaper defines the per-image metadata record shared by the
// pipeline, the retrofit command, the editor session and the store.
package wallpaper

import (
	"path/filepath"

	"wallcrop/internal/cropper"
	"wallcrop/internal/geometry"
)

// Info is the metadata kept for one wallpaper: its size, detected faces, one
// crop per configured aspect ratio and an opaque theming token.
type Info struct {
	Filename   string
	Width      uint32
	Height     uint32
	Faces      []geometry.Face
	Geometries map[string]geometry.Geometry
	Wallust    string
}

// Clone returns a deep copy so editors can keep a source and a working copy.
func (i Info) Clone() Info {
	out := i
	out.Faces = append([]geometry.Face(nil), i.Faces...)
	out.Geometries = make(map[string]geometry.Geometry, len(i.Geometries))
	for k, v := range i.Geometries {
		out.Geometries[k] = v
	}
	return out
}

// Path joins the filename onto dir.
func (i Info) Path(dir string) string {
	return filepath.Join(dir, i.Filename)
}

// ImageDimensions returns width and height.
func (i Info) ImageDimensions() (uint32, uint32) {
	return i.Width, i.Height
}

// Cropper builds a cropper over this image's faces.
func (i Info) Cropper() (*cropper.Cropper, error) {
	return cropper.New(i.Width, i.Height, i.Faces)
}

// Direction reports the axis g slides along within this image.
func (i Info) Direction(g geometry.Geometry) geometry.Direction {
	return geometry.DirectionOf(g, i.Width, i.Height)
}

// HasGeometry reports whether a crop is recorded for ratio.
func (i Info) HasGeometry(ratio geometry.AspectRatio) bool {
	_, ok := i.Geometries[ratio.Key()]
	return ok
}

// Geometry returns the recorded crop for ratio, falling back to the
// cropper's default when nothing is recorded.
func (i Info) Geometry(ratio geometry.AspectRatio) (geometry.Geometry, error) {
	if g, ok := i.Geometries[ratio.Key()]; ok {
		return g, nil
	}
	c, err := i.Cropper()
	if err != nil {
		return geometry.Geometry{}, err
	}
	return c.Crop(ratio)
}

// SetGeometry records g for ratio.
func (i *Info) SetGeometry(ratio geometry.AspectRatio, g geometry.Geometry) {
	if i.Geometries == nil {
		i.Geometries = make(map[string]geometry.Geometry)
	}
	i.Geometries[ratio.Key()] = g
}

// WithGeometry returns a copy of i with g recorded for ratio.
func (i Info) WithGeometry(ratio geometry.AspectRatio, g geometry.Geometry) Info {
	out := i.Clone()
	out.SetGeometry(ratio, g)
	return out
}

// IsDefaultCrops reports whether every ratio still uses the cropper's
// default crop.
func (i Info) IsDefaultCrops(ratios []geometry.AspectRatio) (bool, error) {
	c, err := i.Cropper()
	if err != nil {
		return false, err
	}
	for _, ratio := range ratios {
		def, err := c.Crop(ratio)
		if err != nil {
			return false, err
		}
		current, err := i.Geometry(ratio)
		if err != nil {
			return false, err
		}
		if current != def {
			return false, nil
		}
	}
	return true, nil
}

// FaceFilter selects wallpapers by detected face count.
type FaceFilter string

const (
	FacesAll  FaceFilter = "all"
	FacesZero FaceFilter = "zero"
	FacesOne  FaceFilter = "one"
	FacesMany FaceFilter = "many"
)

// ParseFaceFilter accepts the filter names plus their aliases.
func ParseFaceFilter(value string) (FaceFilter, bool) {
	switch value {
	case "", "all":
		return FacesAll, true
	case "zero", "none":
		return FacesZero, true
	case "one", "single":
		return FacesOne, true
	case "many", "multiple":
		return FacesMany, true
	default:
		return "", false
	}
}

// Matches reports whether i passes the filter.
func (f FaceFilter) Matches(i Info) bool {
	switch f {
	case FacesZero:
		return len(i.Faces) == 0
	case FacesOne:
		return len(i.Faces) == 1
	case FacesMany:
		return len(i.Faces) > 1
	default:
		return true
	}
}
