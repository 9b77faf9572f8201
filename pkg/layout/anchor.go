package layout

// Anchor zone thresholds, in percent. At or below nearZone the element is
// pinned to the near edge; at or above farZone it is pinned to the far edge
// at (100 - pos)%; in between it is centered on the percentage point.
const (
	nearZone = 15.0
	farZone  = 85.0
)

// Anchor converts a percentage position into the top-left pixel position of
// an element of size elemW×elemH inside container.
//
// posY is clamped to [0,100]. posX is not: values above 100 push the element
// past the right edge, matching the preview's saved presets.
func Anchor(posX, posY float64, container Rect, elemW, elemH float64) Point {
	posY = Clamp(posY, 0, 100)
	return Point{
		X: container.X + anchorAxis(posX, container.W, elemW),
		Y: container.Y + anchorAxis(posY, container.H, elemH),
	}
}

// anchorAxis applies the three-zone rule along one axis and returns the
// offset of the element's near edge from the container's near edge.
func anchorAxis(pos, extent, size float64) float64 {
	switch {
	case pos <= nearZone:
		return Percent(extent, pos)
	case pos >= farZone:
		return extent - Percent(extent, 100-pos) - size
	default:
		return Percent(extent, pos) - size/2
	}
}
