// Package palette maps scalar color values in [0, 1] to RGB triples.
package palette

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered list of colors with channels in [0, 1].
// Palettes are treated as immutable once built.
type Palette []colorful.Color

// FromHex decodes a palette from concatenated RRGGBB hex triples.
func FromHex(s string) (Palette, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if len(s)%6 != 0 {
		return nil, fmt.Errorf("palette hex length %d is not a multiple of 6", len(s))
	}

	p := make(Palette, 0, len(s)/6)
	for i := 0; i < len(s); i += 6 {
		c, err := colorful.Hex("#" + s[i:i+6])
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i/6, err)
		}
		p = append(p, c)
	}
	return p, nil
}

// MustFromHex is FromHex for compile-time constant palettes.
func MustFromHex(s string) Palette {
	p, err := FromHex(s)
	if err != nil {
		panic(fmt.Sprintf("invalid palette: %v", err))
	}
	return p
}

// Reference returns a fresh copy of the reference flame palette.
func Reference() Palette {
	return MustFromHex(ReferenceHex)
}

// Classic returns a fresh copy of the earlier reference palette.
func Classic() Palette {
	return MustFromHex(ClassicHex)
}

// Named resolves a built-in palette by name.
func Named(name string) (Palette, error) {
	switch name {
	case "", "reference":
		return Reference(), nil
	case "classic":
		return Classic(), nil
	default:
		return nil, fmt.Errorf("unknown palette %q", name)
	}
}

// Lookup returns the entry at bucket floor(c * len(p)). There is no
// interpolation between neighbouring entries. Values outside [0, 1) are
// clamped to the first or last entry; NaN maps to the first entry.
func (p Palette) Lookup(c float64) colorful.Color {
	return p[p.Index(c)]
}

// Index returns the bucket Lookup reads for c.
func (p Palette) Index(c float64) int {
	n := len(p)
	i := math.Floor(c * float64(n))
	switch {
	case math.IsNaN(i) || i < 0:
		return 0
	case i >= float64(n):
		return n - 1
	default:
		return int(i)
	}
}

// Swatch renders the palette as a horizontal gradient strip.
func (p Palette) Swatch(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if len(p) == 0 || width <= 0 {
		return img
	}
	for x := 0; x < width; x++ {
		r, g, b := p.Lookup((float64(x) + 0.5) / float64(width)).RGB255()
		c := color.NRGBA{R: r, G: g, B: b, A: 255}
		for y := 0; y < height; y++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
