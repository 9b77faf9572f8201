// Package layout holds the pure geometry shared by the raster renderer and
// any live preview: cover fitting, percent anchoring, pagination pills and
// rectangle helpers. Nothing here touches pixels.
package layout

// Rect is an axis-aligned box in canvas pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a canvas position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// R is shorthand for Rect{x, y, w, h}.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	const eps = 1e-9
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Inset shrinks rect by padding on all sides.
func Inset(rect Rect, padding float64) Rect {
	if padding <= 0 {
		return rect
	}
	return Normalize(Rect{
		X: rect.X + padding,
		Y: rect.Y + padding,
		W: rect.W - 2*padding,
		H: rect.H - 2*padding,
	})
}

// Normalize clamps negative sizes to zero.
func Normalize(rect Rect) Rect {
	rect.W = max(rect.W, 0)
	rect.H = max(rect.H, 0)
	return rect
}

// SplitHorizontal splits rect into top and bottom parts.
// topHeight is clamped to [0, rect.H].
func SplitHorizontal(rect Rect, topHeight float64) (top Rect, bottom Rect) {
	rect = Normalize(rect)
	topHeight = min(max(topHeight, 0), rect.H)
	top = Rect{X: rect.X, Y: rect.Y, W: rect.W, H: topHeight}
	bottom = Rect{X: rect.X, Y: rect.Y + topHeight, W: rect.W, H: rect.H - topHeight}
	return top, bottom
}

// Square returns the bounding square of a circle.
func Square(cx, cy, diameter float64) Rect {
	return Rect{X: cx - diameter/2, Y: cy - diameter/2, W: diameter, H: diameter}
}

// Percent converts a 0–100 percentage of total into pixels.
func Percent(total, pct float64) float64 {
	return total * pct / 100
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
