// cover.go - object-fit: cover + object-position + scale, in pixels.
package layout

// Fit is the result of fitting a bitmap into a destination box. Draw is
// where the whole (scaled) bitmap lands; Clip is the region it may paint.
type Fit struct {
	Draw Rect `json:"draw"`
	Clip Rect `json:"clip"`
}

// Scale returns the horizontal and vertical scale from bitmap pixels to
// canvas pixels for a bitmap of the given size.
func (f Fit) Scale(imgW, imgH float64) (sx, sy float64) {
	if imgW <= 0 || imgH <= 0 {
		return 0, 0
	}
	return f.Draw.W / imgW, f.Draw.H / imgH
}

// CoverFit sizes a bitmap so it fully covers dest on the tighter axis,
// multiplies both dimensions by zoom, and positions it by interpolating the
// overflow by the focal percentages: 0 pins the near edge, 100 the far edge.
// Clip is always dest.
func CoverFit(imgW, imgH float64, dest Rect, focalX, focalY, zoom float64) Fit {
	fit := Fit{Draw: dest, Clip: dest}
	if imgW <= 0 || imgH <= 0 || dest.Empty() {
		return fit
	}
	if zoom <= 0 {
		zoom = 1
	}

	imgRatio := imgW / imgH
	destRatio := dest.W / dest.H

	var w, h float64
	if imgRatio > destRatio {
		// Wider than the box: height decides.
		h = dest.H
		w = dest.H * imgRatio
	} else {
		w = dest.W
		h = dest.W / imgRatio
	}
	w *= zoom
	h *= zoom

	fit.Draw = Rect{
		X: dest.X + (dest.W-w)*focalX/100,
		Y: dest.Y + (dest.H-h)*focalY/100,
		W: w,
		H: h,
	}
	return fit
}

// ContainFit scales a bitmap, aspect-locked, to the largest size that fits
// inside dest and centers it.
func ContainFit(imgW, imgH float64, dest Rect) Rect {
	if imgW <= 0 || imgH <= 0 || dest.Empty() {
		return dest
	}
	s := min(dest.W/imgW, dest.H/imgH)
	w, h := imgW*s, imgH*s
	return Rect{X: dest.X + (dest.W-w)/2, Y: dest.Y + (dest.H-h)/2, W: w, H: h}
}
