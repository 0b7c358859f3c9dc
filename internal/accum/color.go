package accum

import "github.com/lucasb-eyer/go-colorful"

// ColorBuffer accumulates palette colors per pixel. Red, Green and Blue are
// running sums of looked-up palette channels; Alpha counts hits.
type ColorBuffer struct {
	Width, Height int
	Red           []float64
	Green         []float64
	Blue          []float64
	Alpha         []float64
}

// NewColorBuffer allocates a zeroed width x height color buffer.
func NewColorBuffer(width, height int) *ColorBuffer {
	n := width * height
	return &ColorBuffer{
		Width:  width,
		Height: height,
		Red:    make([]float64, n),
		Green:  make([]float64, n),
		Blue:   make([]float64, n),
		Alpha:  make([]float64, n),
	}
}

// Add accumulates c at (px, py). It reports whether the pixel was in bounds.
func (b *ColorBuffer) Add(px, py int, c colorful.Color) bool {
	i := Index(px, py, b.Width, b.Height)
	if i < 0 {
		return false
	}
	b.Red[i] += c.R
	b.Green[i] += c.G
	b.Blue[i] += c.B
	b.Alpha[i]++
	return true
}

// Histogram converts the hit counts into a Histogram, so density statistics
// work the same for both accumulation modes.
func (b *ColorBuffer) Histogram() *Histogram {
	h := NewHistogram(b.Width, b.Height)
	for i, a := range b.Alpha {
		h.Counts[i] = uint64(a)
	}
	return h
}
