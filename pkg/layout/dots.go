package layout

// DotsSpec describes pagination pill geometry.
type DotsSpec struct {
	Height          float64
	ActiveWidth     float64
	InactiveWidth   float64
	Gap             float64
	ActiveOpacity   float64
	InactiveOpacity float64
}

// DefaultDots matches the preview's pagination indicator.
var DefaultDots = DotsSpec{
	Height:          10,
	ActiveWidth:     36,
	InactiveWidth:   10,
	Gap:             10,
	ActiveOpacity:   1,
	InactiveOpacity: 0.4,
}

// Pill is one laid-out pagination pill. Corner radius is H/2.
type Pill struct {
	Rect
	Opacity float64 `json:"opacity"`
	Active  bool    `json:"active"`
}

// Dots lays out count pills centered horizontally on centerX with their
// top edge at y. active is clamped into [0, count).
func Dots(count, active int, spec DotsSpec, centerX, y float64) []Pill {
	if count <= 0 {
		return nil
	}
	active = min(max(active, 0), count-1)

	total := spec.ActiveWidth + float64(count-1)*(spec.InactiveWidth+spec.Gap)
	x := centerX - total/2

	pills := make([]Pill, 0, count)
	for i := range count {
		p := Pill{Rect: Rect{X: x, Y: y, W: spec.InactiveWidth, H: spec.Height}, Opacity: spec.InactiveOpacity}
		if i == active {
			p.W = spec.ActiveWidth
			p.Opacity = spec.ActiveOpacity
			p.Active = true
		}
		pills = append(pills, p)
		x += p.W + spec.Gap
	}
	return pills
}
