package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/aquilax/go-perlin"
)

// Backdrops the flame can be composited over. The default leaves the
// tone-mapped image transparent.
const (
	BackdropNone  = "none"
	BackdropWhite = "white"
	BackdropBlack = "black"
	BackdropPaper = "paper"
)

// ParseBackdrop validates a backdrop name.
func ParseBackdrop(name string) (string, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", BackdropNone:
		return BackdropNone, nil
	case BackdropWhite, BackdropBlack, BackdropPaper:
		return n, nil
	default:
		return "", fmt.Errorf("unknown backdrop %q (use none, white, black or paper)", name)
	}
}

// Composite draws img over the named backdrop. BackdropNone returns img as is.
func Composite(img *image.NRGBA, backdrop string, seed int64) *image.NRGBA {
	var base *image.NRGBA
	switch backdrop {
	case BackdropWhite:
		base = solid(img.Bounds(), color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	case BackdropBlack:
		base = solid(img.Bounds(), color.NRGBA{A: 0xff})
	case BackdropPaper:
		base = Paper(img.Bounds().Dx(), img.Bounds().Dy(), seed)
	default:
		return img
	}
	draw.Draw(base, base.Bounds(), img, img.Bounds().Min, draw.Over)
	return base
}

func solid(r image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(r)
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// Paper generates an off-white paper texture from Perlin noise.
func Paper(width, height int, seed int64) *image.NRGBA {
	const scale = 24.0

	// alpha: persistence, beta: lacunarity, n: octaves
	p := perlin.NewPerlin(2.0, 2.0, 3, seed)
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := p.Noise2D(float64(x)/scale, float64(y)/scale)
			// Noise is roughly in [-1, 1]; keep the grain subtle.
			v := 236 + n*12
			g := uint8(math.Max(0, math.Min(255, v)))
			off := img.PixOffset(x, y)
			img.Pix[off] = g
			img.Pix[off+1] = g
			img.Pix[off+2] = uint8(math.Max(0, math.Min(255, v-6)))
			img.Pix[off+3] = 0xff
		}
	}
	return img
}
