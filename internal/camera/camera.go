// Package camera projects points from the IFS coordinate plane to pixel coordinates.
//
// Projections never clamp. Points that land outside the image (including
// non-finite points) yield coordinates outside [0, width) x [0, height) and
// are expected to be dropped by the caller.
package camera

import "math"

// Projector maps IFS coordinates to integer pixel coordinates.
type Projector interface {
	Project(x, y float64) (px, py int)
}

// Offscreen is returned for coordinates that cannot be represented as a pixel.
const Offscreen = -1

// Square maps the range [-2, 2] on both axes onto a Size x Size image:
// pixel = floor((v + 2) * size / 4).
type Square struct {
	Size int
}

func (s Square) Project(x, y float64) (int, int) {
	size := float64(s.Size)
	return toPixel((x + 2) * size / 4), toPixel((y + 2) * size / 4)
}

// Unit maps the range [0, 1] directly onto the image: pixel = floor(v * size).
// The Sierpinski gasket attractor lives entirely in that range.
type Unit struct {
	Width, Height int
}

func (u Unit) Project(x, y float64) (int, int) {
	return toPixel(x * float64(u.Width)), toPixel(y * float64(u.Height))
}

// View is the full camera. Operations are applied in order: subtract the
// offset, rotate by Rotate radians, scale by 2^Zoom, multiply by Scale
// (pixels per IFS unit), then shift by half the image size.
type View struct {
	Width, Height    int
	OffsetX, OffsetY float64
	Rotate           float64
	Zoom             float64
	Scale            float64
}

// NewView returns a View whose scale shows [-2, 2] across the larger image side.
func NewView(width, height int) View {
	return View{
		Width:  width,
		Height: height,
		Scale:  DefaultScale(width, height),
	}
}

// DefaultScale is the pixels-per-unit that fits [-2, 2] across the larger side.
func DefaultScale(width, height int) float64 {
	return float64(max(width, height)) / 4
}

func (v View) Project(x, y float64) (int, int) {
	x -= v.OffsetX
	y -= v.OffsetY

	sin, cos := math.Sincos(v.Rotate)
	x, y = x*cos-y*sin, x*sin+y*cos

	zoom := math.Pow(2, v.Zoom)
	x *= zoom
	y *= zoom

	return toPixel(x*v.Scale + float64(v.Width)/2), toPixel(y*v.Scale + float64(v.Height)/2)
}

// InBounds reports whether (px, py) addresses a pixel of a width x height image.
func InBounds(px, py, width, height int) bool {
	return px >= 0 && px < width && py >= 0 && py < height
}

// toPixel floors v, mapping NaN, infinities and values beyond the int32 range
// to Offscreen. Float-to-int conversion of such values is implementation-defined.
func toPixel(v float64) int {
	f := math.Floor(v)
	if math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return Offscreen
	}
	return int(f)
}
