package accum

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramAccumulatesExactly(t *testing.T) {
	h := NewHistogram(16, 8)
	for i := 0; i < 1000; i++ {
		require.True(t, h.Add(3, 5))
	}
	assert.Equal(t, uint64(1000), h.At(3, 5))
	assert.Equal(t, uint64(1000), h.Max())
	assert.Equal(t, uint64(1000), h.Total())
	assert.Equal(t, uint64(0), h.At(5, 3))
}

func TestHistogramDropsOutOfBounds(t *testing.T) {
	h := NewHistogram(4, 4)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {-1, -1}, {100, 100}} {
		assert.False(t, h.Add(p[0], p[1]), "%v", p)
	}
	assert.Equal(t, uint64(0), h.Total())
	assert.Equal(t, uint64(0), h.At(-1, 2))
}

func TestIndexRowMajor(t *testing.T) {
	assert.Equal(t, 0, Index(0, 0, 10, 5))
	assert.Equal(t, 13, Index(3, 1, 10, 5))
	assert.Equal(t, -1, Index(10, 0, 10, 5))
	assert.Equal(t, -1, Index(0, 5, 10, 5))
}

func TestDistribution(t *testing.T) {
	h := NewHistogram(4, 1)
	h.Add(0, 0)
	for i := 0; i < 3; i++ {
		h.Add(1, 0)
	}
	for i := 0; i < 9; i++ {
		h.Add(2, 0)
	}

	d := h.Distribution()
	require.Len(t, d, 5)
	assert.Equal(t, Bucket{Bits: 0, Pixels: 1}, d[0])
	assert.Equal(t, Bucket{Bits: 1, Low: 1, High: 1, Pixels: 1}, d[1])
	assert.Equal(t, Bucket{Bits: 2, Low: 2, High: 3, Pixels: 1}, d[2])
	assert.Equal(t, 0, d[3].Pixels)
	assert.Equal(t, Bucket{Bits: 4, Low: 8, High: 15, Pixels: 1}, d[4])

	total := 0
	for _, b := range d {
		total += b.Pixels
	}
	assert.Equal(t, 4, total)
}

func TestDistributionEmpty(t *testing.T) {
	d := NewHistogram(3, 3).Distribution()
	require.Len(t, d, 1)
	assert.Equal(t, 9, d[0].Pixels)
}

func TestColorBuffer(t *testing.T) {
	b := NewColorBuffer(4, 4)
	c := colorful.Color{R: 0.5, G: 0.25, B: 1}
	require.True(t, b.Add(1, 2, c))
	require.True(t, b.Add(1, 2, c))
	assert.False(t, b.Add(4, 0, c))

	i := Index(1, 2, 4, 4)
	assert.Equal(t, 1.0, b.Red[i])
	assert.Equal(t, 0.5, b.Green[i])
	assert.Equal(t, 2.0, b.Blue[i])
	assert.Equal(t, 2.0, b.Alpha[i])

	h := b.Histogram()
	assert.Equal(t, uint64(2), h.At(1, 2))
	assert.Equal(t, uint64(2), h.Total())
}
