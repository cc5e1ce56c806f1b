// Package cropper turns face detections and image dimensions into a default
// crop and a ranked list of alternative crops for any aspect ratio.
package cropper

import (
	"fmt"

	"wallcrop/internal/geometry"
	"wallcrop/internal/services"
)

// Cropper computes crops for a single image.
type Cropper struct {
	width  uint32
	height uint32
	faces  []geometry.Face
}

// New builds a cropper for a width x height image with the given faces.
func New(width, height uint32, faces []geometry.Face) (*Cropper, error) {
	if width == 0 || height == 0 {
		return nil, services.Wrap(services.ErrInput, "cropper", "new", fmt.Sprintf("invalid image dimensions %dx%d", width, height), nil)
	}
	cloned := append([]geometry.Face(nil), faces...)
	return &Cropper{width: width, height: height, faces: cloned}, nil
}

// Dimensions returns the source image size.
func (c *Cropper) Dimensions() (uint32, uint32) {
	return c.width, c.height
}

// Faces returns a copy of the faces the cropper was built with.
func (c *Cropper) Faces() []geometry.Face {
	return append([]geometry.Face(nil), c.faces...)
}

// CropSize fits ratio inside the image without exceeding either side and
// reports the axis the resulting crop slides along.
func (c *Cropper) CropSize(ratio geometry.AspectRatio) (w, h uint32, dir geometry.Direction, err error) {
	if ratio.Width == 0 || ratio.Height == 0 {
		return 0, 0, 0, services.Wrap(services.ErrInput, "cropper", "fit", fmt.Sprintf("invalid ratio %s", ratio), nil)
	}
	imgW, imgH := uint64(c.width), uint64(c.height)
	rw, rh := uint64(ratio.Width), uint64(ratio.Height)

	if imgW*rh >= imgH*rw {
		w, h = uint32(imgH*rw/rh), c.height
	} else {
		w, h = c.width, uint32(imgW*rh/rw)
	}
	if w == 0 || h == 0 {
		return 0, 0, 0, services.Wrap(services.ErrInput, "cropper", "fit",
			fmt.Sprintf("image %dx%d is too small for ratio %s", c.width, c.height, ratio), nil)
	}
	dir = geometry.DirectionOf(geometry.Geometry{W: w, H: h}, c.width, c.height)
	return w, h, dir, nil
}

// Crop returns the default crop for ratio, which is always the first candidate.
func (c *Cropper) Crop(ratio geometry.AspectRatio) (geometry.Geometry, error) {
	candidates, err := c.Candidates(ratio)
	if err != nil {
		return geometry.Geometry{}, err
	}
	return candidates[0], nil
}

// Candidates returns the deduplicated crops for ratio in a fixed order: the
// crop centered on all faces, one per face in detection order, then the
// image center. Without faces only the centered crop is returned.
func (c *Cropper) Candidates(ratio geometry.AspectRatio) ([]geometry.Geometry, error) {
	w, h, dir, err := c.CropSize(ratio)
	if err != nil {
		return nil, err
	}

	if len(c.faces) == 0 {
		return []geometry.Geometry{geometry.Geometry{W: w, H: h}.AlignCenter(c.width, c.height)}, nil
	}

	imgLen, cropLen := c.axisLength(dir), axisValue(dir, w, h)
	half := float64(cropLen) / 2

	desired := make([]float64, 0, len(c.faces)+2)
	lo, hi := c.faceBounds(dir)
	desired = append(desired, float64(lo+hi)/2-half)
	for _, face := range c.faces {
		start, end := clampSpan(face, dir, imgLen)
		desired = append(desired, float64(start+end)/2-half)
	}
	desired = append(desired, float64(imgLen)/2-half)

	seen := make(map[geometry.Geometry]struct{}, len(desired))
	out := make([]geometry.Geometry, 0, len(desired))
	for _, start := range desired {
		g := c.Clamp(start, dir, w, h)
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out, nil
}

// Clamp places a w x h crop at start along dir, clipped to the image.
func (c *Cropper) Clamp(start float64, dir geometry.Direction, w, h uint32) geometry.Geometry {
	limit := float64(c.axisLength(dir)) - float64(axisValue(dir, w, h))
	if limit < 0 {
		limit = 0
	}
	if start < 0 {
		start = 0
	}
	if start > limit {
		start = limit
	}
	offset := uint32(start)
	if dir == geometry.DirectionY {
		return geometry.Geometry{W: w, H: h, X: 0, Y: offset}
	}
	return geometry.Geometry{W: w, H: h, X: offset, Y: 0}
}

// Direction reports the axis g slides along within this image.
func (c *Cropper) Direction(g geometry.Geometry) geometry.Direction {
	return geometry.DirectionOf(g, c.width, c.height)
}

// faceBounds is the interval covering every face on the active axis.
func (c *Cropper) faceBounds(dir geometry.Direction) (lo, hi int) {
	imgLen := c.axisLength(dir)
	for i, face := range c.faces {
		start, end := clampSpan(face, dir, imgLen)
		if i == 0 || start < lo {
			lo = start
		}
		if i == 0 || end > hi {
			hi = end
		}
	}
	return lo, hi
}

func (c *Cropper) axisLength(dir geometry.Direction) uint32 {
	return axisValue(dir, c.width, c.height)
}

func axisValue(dir geometry.Direction, w, h uint32) uint32 {
	if dir == geometry.DirectionY {
		return h
	}
	return w
}

// clampSpan clips a face box to [0, imgLen] on the given axis.
func clampSpan(face geometry.Face, dir geometry.Direction, imgLen uint32) (int, int) {
	start, end := face.Span(dir)
	limit := int(imgLen)
	return clampInt(start, 0, limit), clampInt(end, 0, limit)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
