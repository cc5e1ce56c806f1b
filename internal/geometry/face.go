package geometry

// Face is an axis-aligned bounding box in source-image pixels.
type Face struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DetectedFace is the box shape printed by the face detector, one JSON array
// of these per input image.
type DetectedFace struct {
	XMin  float64 `json:"xmin"`
	YMin  float64 `json:"ymin"`
	XMax  float64 `json:"xmax"`
	YMax  float64 `json:"ymax"`
	Score float64 `json:"score,omitempty"`
}

// ToFace converts detector coordinates into a Face, truncating to pixels.
func (d DetectedFace) ToFace() Face {
	x, y := int(d.XMin), int(d.YMin)
	w, h := int(d.XMax)-x, int(d.YMax)-y
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Face{X: x, Y: y, W: w, H: h}
}

// Span returns the face interval on the given axis.
func (f Face) Span(dir Direction) (start, end int) {
	if dir == DirectionY {
		return f.Y, f.Y + f.H
	}
	return f.X, f.X + f.W
}
