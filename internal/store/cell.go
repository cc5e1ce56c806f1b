package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"wallcrop/internal/cropper"
	"wallcrop/internal/geometry"
	"wallcrop/internal/services"
	"wallcrop/internal/wallpaper"
)

// encodeCell renders the persisted crop form.
func encodeCell(g geometry.Geometry) string {
	return g.OffsetString()
}

// decodeCell rebuilds a full crop from a persisted cell. The size is implied
// by fitting ratio into the image; a four-field cell must agree with it.
func decodeCell(info wallpaper.Info, ratio geometry.AspectRatio, cell string) (geometry.Geometry, error) {
	c, err := cropper.New(info.Width, info.Height, nil)
	if err != nil {
		return geometry.Geometry{}, err
	}
	w, h, _, err := c.CropSize(ratio)
	if err != nil {
		return geometry.Geometry{}, err
	}

	var g geometry.Geometry
	if strings.Contains(cell, "x") {
		g, err = geometry.Parse(cell)
		if err != nil {
			return geometry.Geometry{}, err
		}
		if g.W != w || g.H != h {
			return geometry.Geometry{}, services.Wrap(services.ErrInput, "store", "decode crop",
				fmt.Sprintf("%s: crop %s does not match %dx%d for ratio %s", info.Filename, g, w, h, ratio), nil)
		}
	} else {
		x, y, err := geometry.ParseOffset(cell)
		if err != nil {
			return geometry.Geometry{}, err
		}
		g = geometry.Geometry{W: w, H: h, X: x, Y: y}
	}
	if !g.InBounds(info.Width, info.Height) {
		return geometry.Geometry{}, services.Wrap(services.ErrInput, "store", "decode crop",
			fmt.Sprintf("%s: crop %s exceeds %dx%d", info.Filename, g, info.Width, info.Height), nil)
	}
	return g, nil
}

func encodeFaces(faces []geometry.Face) (string, error) {
	if faces == nil {
		faces = []geometry.Face{}
	}
	data, err := json.Marshal(faces)
	if err != nil {
		return "", fmt.Errorf("encode faces: %w", err)
	}
	return string(data), nil
}

func decodeFaces(filename, raw string) ([]geometry.Face, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var faces []geometry.Face
	if err := json.Unmarshal([]byte(raw), &faces); err != nil {
		return nil, services.Wrap(services.ErrInput, "store", "decode faces", filename, err)
	}
	return faces, nil
}
