package geometry

import (
	"fmt"
	"strconv"
	"strings"

	"wallcrop/internal/services"
)

// Geometry is a crop rectangle in source-image pixels. The struct is
// comparable so == is full-value equality and it can key a dedup set.
type Geometry struct {
	W uint32
	H uint32
	X uint32
	Y uint32
}

// String renders the four-field form "{w}x{h}+{x}+{y}".
func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", g.W, g.H, g.X, g.Y)
}

// OffsetString renders the persisted form "{x}+{y}".
func (g Geometry) OffsetString() string {
	return fmt.Sprintf("%d+%d", g.X, g.Y)
}

// Parse reads the four-field form produced by String.
func Parse(value string) (Geometry, error) {
	width, rest, ok := strings.Cut(strings.TrimSpace(value), "x")
	parts := append([]string{width}, strings.Split(rest, "+")...)
	if !ok || len(parts) != 4 {
		return Geometry{}, services.Wrap(services.ErrInput, "geometry", "parse", fmt.Sprintf("invalid format %q", value), nil)
	}
	fields, err := parseFields(value, parts)
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{W: fields[0], H: fields[1], X: fields[2], Y: fields[3]}, nil
}

// ParseOffset reads the persisted "{x}+{y}" form. Width and height are left
// zero for the caller to fill from the column's aspect ratio.
func ParseOffset(value string) (x, y uint32, err error) {
	parts := strings.Split(strings.TrimSpace(value), "+")
	if len(parts) != 2 {
		return 0, 0, services.Wrap(services.ErrInput, "geometry", "parse offset", fmt.Sprintf("invalid format %q", value), nil)
	}
	fields, err := parseFields(value, parts)
	if err != nil {
		return 0, 0, err
	}
	return fields[0], fields[1], nil
}

func parseFields(raw string, parts []string) ([]uint32, error) {
	out := make([]uint32, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, services.Wrap(services.ErrInput, "geometry", "parse", fmt.Sprintf("invalid coordinate %q in %q", part, raw), err)
		}
		out[i] = uint32(v)
	}
	return out, nil
}

// InBounds reports whether g lies fully inside an imgW x imgH image.
func (g Geometry) InBounds(imgW, imgH uint32) bool {
	return uint64(g.X)+uint64(g.W) <= uint64(imgW) && uint64(g.Y)+uint64(g.H) <= uint64(imgH)
}
