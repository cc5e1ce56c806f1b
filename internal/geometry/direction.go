package geometry

// Direction is the axis along which a crop is narrower (X) or shorter (Y)
// than its source image.
type Direction int

const (
	// DirectionX means the crop spans the full image height and slides horizontally.
	DirectionX Direction = iota
	// DirectionY means the crop spans the full image width and slides vertically.
	DirectionY
)

func (d Direction) String() string {
	if d == DirectionY {
		return "y"
	}
	return "x"
}

// DirectionOf compares the crop aspect against the image aspect. A crop with
// the same aspect as the image resolves to DirectionX.
func DirectionOf(g Geometry, imgW, imgH uint32) Direction {
	crop := uint64(g.W) * uint64(imgH)
	img := uint64(imgW) * uint64(g.H)
	if crop > img {
		return DirectionY
	}
	return DirectionX
}
