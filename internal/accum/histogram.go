// Package accum holds the per-pixel accumulation buffers filled by the chaos game.
//
// Buffers are single contiguous slices indexed y*width + x and sized once at
// construction. Writes outside the image are silently dropped.
package accum

import (
	"math/bits"
)

// Histogram counts point visits per pixel.
type Histogram struct {
	Width, Height int
	Counts        []uint64
}

// NewHistogram allocates a zeroed width x height histogram.
func NewHistogram(width, height int) *Histogram {
	return &Histogram{
		Width:  width,
		Height: height,
		Counts: make([]uint64, width*height),
	}
}

// Index returns the buffer offset of (px, py), or -1 when outside the image.
func Index(px, py, width, height int) int {
	if px < 0 || px >= width || py < 0 || py >= height {
		return -1
	}
	return py*width + px
}

// Add records one visit at (px, py). It reports whether the pixel was in bounds.
func (h *Histogram) Add(px, py int) bool {
	i := Index(px, py, h.Width, h.Height)
	if i < 0 {
		return false
	}
	h.Counts[i]++
	return true
}

// At returns the visit count at (px, py), zero when outside the image.
func (h *Histogram) At(px, py int) uint64 {
	i := Index(px, py, h.Width, h.Height)
	if i < 0 {
		return 0
	}
	return h.Counts[i]
}

// Max returns the largest count.
func (h *Histogram) Max() uint64 {
	var m uint64
	for _, c := range h.Counts {
		if c > m {
			m = c
		}
	}
	return m
}

// Total returns the number of recorded visits.
func (h *Histogram) Total() uint64 {
	var t uint64
	for _, c := range h.Counts {
		t += c
	}
	return t
}

// Bucket is one bin of a density distribution. Bucket b holds pixels whose
// count has bit length b, i.e. counts in [2^(b-1), 2^b). Bucket 0 holds the
// empty pixels.
type Bucket struct {
	Bits   int
	Low    uint64
	High   uint64
	Pixels int
}

// Distribution bins pixels by the bit length of their visit count. The result
// covers every bucket from 0 to the bit length of Max, including empty ones.
func (h *Histogram) Distribution() []Bucket {
	top := bits.Len64(h.Max())
	out := make([]Bucket, top+1)
	for b := range out {
		out[b].Bits = b
		if b > 0 {
			out[b].Low = 1 << (b - 1)
			out[b].High = 1<<b - 1
		}
	}
	for _, c := range h.Counts {
		out[bits.Len64(c)].Pixels++
	}
	return out
}
