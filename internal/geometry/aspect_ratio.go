package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"wallcrop/internal/services"
)

// ratioEpsilon is the tolerance used when comparing ratios as floats.
const ratioEpsilon = 1e-6

// AspectRatio is a named target width:height ratio.
type AspectRatio struct {
	Width  uint32
	Height uint32
	Name   string
}

// NewAspectRatio validates and builds a ratio.
func NewAspectRatio(width, height uint32, name string) (AspectRatio, error) {
	if width == 0 || height == 0 {
		return AspectRatio{}, services.Wrap(services.ErrInput, "aspect ratio", "validate", fmt.Sprintf("%dx%d has a zero side", width, height), nil)
	}
	return AspectRatio{Width: width, Height: height, Name: strings.TrimSpace(name)}, nil
}

// ParseAspectRatio accepts "16x9", "16:9" or a resolution such as "1920x1080".
func ParseAspectRatio(value string) (AspectRatio, error) {
	trimmed := strings.TrimSpace(value)
	sep := "x"
	if strings.Contains(trimmed, ":") {
		sep = ":"
	}
	parts := strings.Split(trimmed, sep)
	if len(parts) != 2 {
		return AspectRatio{}, services.Wrap(services.ErrInput, "aspect ratio", "parse", fmt.Sprintf("invalid ratio %q", value), nil)
	}
	w, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return AspectRatio{}, services.Wrap(services.ErrInput, "aspect ratio", "parse", fmt.Sprintf("invalid width in %q", value), err)
	}
	h, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return AspectRatio{}, services.Wrap(services.ErrInput, "aspect ratio", "parse", fmt.Sprintf("invalid height in %q", value), err)
	}
	return NewAspectRatio(uint32(w), uint32(h), "")
}

// MustAspectRatio is ParseAspectRatio for literals known to be valid.
func MustAspectRatio(value string) AspectRatio {
	r, err := ParseAspectRatio(value)
	if err != nil {
		panic(err)
	}
	return r
}

// WithName returns a copy of r carrying name.
func (r AspectRatio) WithName(name string) AspectRatio {
	r.Name = strings.TrimSpace(name)
	return r
}

// Value returns width / height.
func (r AspectRatio) Value() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

// Equal compares ratios by value; names are ignored.
func (r AspectRatio) Equal(other AspectRatio) bool {
	return math.Abs(r.Value()-other.Value()) <= ratioEpsilon
}

// String renders "WxH" as written by the user.
func (r AspectRatio) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Key is the reduced form, so 1920x1080 and 16x9 share one map slot.
func (r AspectRatio) Key() string {
	d := gcd(r.Width, r.Height)
	if d == 0 {
		return r.String()
	}
	return fmt.Sprintf("%dx%d", r.Width/d, r.Height/d)
}

// Label prefers the display name and falls back to the ratio text.
func (r AspectRatio) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.String()
}

// MatchesImage reports whether an imgW x imgH image already has this ratio.
func (r AspectRatio) MatchesImage(imgW, imgH uint32) bool {
	if imgH == 0 {
		return false
	}
	return math.Abs(float64(imgW)/float64(imgH)-r.Value()) <= ratioEpsilon
}

// Closest returns the entry of candidates nearest to target by ratio value,
// skipping entries equal to target. ok is false when nothing qualifies.
func Closest(target AspectRatio, candidates []AspectRatio) (closest AspectRatio, ok bool) {
	best := math.Inf(1)
	for _, c := range candidates {
		if c.Equal(target) {
			continue
		}
		diff := math.Abs(c.Value() - target.Value())
		if diff < best {
			best = diff
			closest = c
			ok = true
		}
	}
	return closest, ok
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
