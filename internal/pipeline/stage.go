package pipeline

import "fmt"

// Stage is the processing state of one image. The set of stages is closed:
// Upscale, Optimize, Detect and Preview are its only members, and every
// transition switches over all four.
type Stage interface {
	stage()
	fmt.Stringer
}

// Upscale enlarges Source by Factor before optimizing. Factor 1 skips the upscaler.
type Upscale struct {
	Source string
	Factor int
}

// Optimize writes an optimized copy of Path into the wallpapers directory.
type Optimize struct {
	Path string
}

// Detect runs face detection on Path and records its metadata.
type Detect struct {
	Path string
}

// Preview hands Path to the crop editor. It is terminal.
type Preview struct {
	Path string
}

func (Upscale) stage()  {}
func (Optimize) stage() {}
func (Detect) stage()   {}
func (Preview) stage()  {}

func (s Upscale) String() string  { return fmt.Sprintf("upscale(%s, x%d)", s.Source, s.Factor) }
func (s Optimize) String() string { return fmt.Sprintf("optimize(%s)", s.Path) }
func (s Detect) String() string   { return fmt.Sprintf("detect(%s)", s.Path) }
func (s Preview) String() string  { return fmt.Sprintf("preview(%s)", s.Path) }

// ScaleFactor returns the smallest factor in 1..4 that brings a width x height
// image up to at least minWidth x minHeight.
func ScaleFactor(width, height, minWidth, minHeight uint32) (int, error) {
	for factor := uint64(1); factor <= 4; factor++ {
		if uint64(width)*factor >= uint64(minWidth) && uint64(height)*factor >= uint64(minHeight) {
			return int(factor), nil
		}
	}
	return 0, errTooSmall(width, height, minWidth, minHeight)
}
