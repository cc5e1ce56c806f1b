package geometry

// AlignStart anchors the crop to the leading edge.
func (g Geometry) AlignStart(_, _ uint32) Geometry {
	g.X = 0
	g.Y = 0
	return g
}

// AlignCenter centers the crop on its active axis.
func (g Geometry) AlignCenter(imgW, imgH uint32) Geometry {
	if g.H == imgH {
		g.X = sub(imgW, g.W) / 2
		g.Y = 0
		return g
	}
	g.X = 0
	g.Y = sub(imgH, g.H) / 2
	return g
}

// AlignEnd anchors the crop to the trailing edge of its active axis.
func (g Geometry) AlignEnd(imgW, imgH uint32) Geometry {
	if g.H == imgH {
		g.X = sub(imgW, g.W)
		g.Y = 0
		return g
	}
	g.X = 0
	g.Y = sub(imgH, g.H)
	return g
}

// MoveBy shifts the crop along its active axis. Negative moves saturate at
// zero and positive moves stop at the trailing edge.
func (g Geometry) MoveBy(delta int, imgW, imgH uint32) Geometry {
	switch DirectionOf(g, imgW, imgH) {
	case DirectionX:
		g.X = shift(g.X, delta, sub(imgW, g.W))
	case DirectionY:
		g.Y = shift(g.Y, delta, sub(imgH, g.H))
	}
	return g
}

func shift(offset uint32, delta int, limit uint32) uint32 {
	if delta < 0 {
		step := uint64(-int64(delta))
		if step >= uint64(offset) {
			return 0
		}
		return offset - uint32(step)
	}
	next := uint64(offset) + uint64(delta)
	if next > uint64(limit) {
		return limit
	}
	return uint32(next)
}

func sub(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}
