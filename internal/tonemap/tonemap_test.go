package tonemap

import (
	"image"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/flamecanvas/internal/accum"
)

func alphaAt(img *image.NRGBA, x, y int) uint8 {
	return img.Pix[img.PixOffset(x, y)+3]
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"binary", Binary},
		{"Linear", Linear},
		{"logarithmic", Logarithmic},
		{"log", Logarithmic},
		{" color ", Color},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
			assert.NotEmpty(t, m.String())
		})
	}

	_, err := ParseMode("sepia")
	assert.Error(t, err)
}

func TestMapBinary(t *testing.T) {
	h := accum.NewHistogram(3, 2)
	h.Add(0, 0)
	h.Add(2, 1)
	h.Add(2, 1)

	img := MapBinary(h)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, uint8(0xff), alphaAt(img, 0, 0))
	assert.Equal(t, uint8(0xff), alphaAt(img, 2, 1))
	assert.Equal(t, uint8(0), alphaAt(img, 1, 0))

	off := img.PixOffset(0, 0)
	assert.Equal(t, []uint8{0, 0, 0}, img.Pix[off:off+3], "ink is black")
}

func TestMapLinear(t *testing.T) {
	h := accum.NewHistogram(3, 1)
	for i := 0; i < 4; i++ {
		h.Add(0, 0)
	}
	for i := 0; i < 2; i++ {
		h.Add(1, 0)
	}

	img := MapLinear(h)
	assert.Equal(t, uint8(0xff), alphaAt(img, 0, 0))
	assert.Equal(t, uint8(128), alphaAt(img, 1, 0))
	assert.Equal(t, uint8(0), alphaAt(img, 2, 0))
}

func TestMapEmptyHistogram(t *testing.T) {
	h := accum.NewHistogram(2, 2)
	for _, img := range []*image.NRGBA{MapBinary(h), MapLinear(h), MapLogarithmic(h)} {
		for _, p := range img.Pix {
			assert.Equal(t, uint8(0), p)
		}
	}
}

func TestMapLogarithmic(t *testing.T) {
	h := accum.NewHistogram(4, 1)
	h.Add(0, 0)
	for i := 0; i < 10; i++ {
		h.Add(1, 0)
	}
	for i := 0; i < 100; i++ {
		h.Add(2, 0)
	}

	img := MapLogarithmic(h)
	assert.Equal(t, uint8(0), alphaAt(img, 0, 0), "log(1) is zero")
	assert.Equal(t, uint8(128), alphaAt(img, 1, 0))
	assert.Equal(t, uint8(0xff), alphaAt(img, 2, 0))
	assert.Equal(t, uint8(0), alphaAt(img, 3, 0), "empty pixels stay transparent")
}

func TestMapLogarithmicSingleHits(t *testing.T) {
	h := accum.NewHistogram(2, 1)
	h.Add(0, 0)

	img := MapLogarithmic(h)
	assert.Equal(t, uint8(0xff), alphaAt(img, 0, 0))
	assert.Equal(t, uint8(0), alphaAt(img, 1, 0))
}

func TestMapLogarithmicMonotonic(t *testing.T) {
	// A reference pixel pins the maximum so the probe pixel's opacity is
	// comparable across N.
	h := accum.NewHistogram(2, 1)
	for i := 0; i < 5000; i++ {
		h.Add(1, 0)
	}

	var prev uint8
	for n := 1; n <= 4000; n++ {
		require.True(t, h.Add(0, 0))
		require.Equal(t, uint64(n), h.At(0, 0))
		a := alphaAt(MapLogarithmic(h), 0, 0)
		require.GreaterOrEqual(t, a, prev, "n=%d", n)
		prev = a
	}
}

func TestColorScale(t *testing.T) {
	assert.Equal(t, 0.0, ColorScale(0))
	assert.Equal(t, 0.0, ColorScale(-3))
	assert.Equal(t, 0.0, ColorScale(1))
	assert.InDelta(t, 1/15.0, ColorScale(10), 1e-12)
	assert.False(t, math.IsNaN(ColorScale(0)))
}

func TestMapColor(t *testing.T) {
	b := accum.NewColorBuffer(2, 1)
	c := colorful.Color{R: 1, G: 0.5, B: 0}
	for i := 0; i < 10; i++ {
		b.Add(0, 0, c)
	}

	img := MapColor(b)
	off := img.PixOffset(0, 0)
	// scale = 1/15; red sum 10 -> 10/15, alpha 10 -> 10/15.
	assert.Equal(t, uint8(170), img.Pix[off])
	assert.Equal(t, uint8(85), img.Pix[off+1])
	assert.Equal(t, uint8(0), img.Pix[off+2])
	assert.Equal(t, uint8(170), img.Pix[off+3])

	off = img.PixOffset(1, 0)
	assert.Equal(t, []uint8{0, 0, 0, 0}, img.Pix[off:off+4], "unvisited pixel is transparent")
}

func TestMapDispatch(t *testing.T) {
	h := accum.NewHistogram(1, 1)
	h.Add(0, 0)

	for _, m := range []Mode{Binary, Linear, Logarithmic} {
		img, err := Map(m, h)
		require.NoError(t, err, m.String())
		assert.Equal(t, uint8(0xff), alphaAt(img, 0, 0), m.String())
	}

	_, err := Map(Color, h)
	assert.Error(t, err)
}

func TestTo8(t *testing.T) {
	assert.Equal(t, uint8(0), to8(math.NaN()))
	assert.Equal(t, uint8(0), to8(math.Inf(-1)))
	assert.Equal(t, uint8(0), to8(-0.5))
	assert.Equal(t, uint8(0xff), to8(1))
	assert.Equal(t, uint8(0xff), to8(math.Inf(1)))
	assert.Equal(t, uint8(128), to8(0.5))
}

func TestPostProcessNoop(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.Same(t, img, PostProcess(img, PostOptions{}))
	assert.Same(t, img, PostProcess(img, PostOptions{Gamma: 1, Supersample: 1}))
}

func TestPostProcessSupersample(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}

	out := PostProcess(img, PostOptions{Supersample: 2, Blur: 0.5, Gamma: 1.2})
	assert.Equal(t, image.Rect(0, 0, 20, 10), out.Bounds())
	assert.InDelta(t, 0xff, int(alphaAt(out, 10, 5)), 2)
}

func TestDownscaleFactorOne(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	assert.Same(t, img, Downscale(img, 1))
}
