// Package tonemap converts accumulation buffers into displayable images.
//
// Every mapping is a pure function of the finished buffers and returns a new
// *image.NRGBA with non-premultiplied 8-bit channels. Monochrome modes paint
// black ink whose opacity encodes density; the color mode scales accumulated
// palette sums by a log-density curve.
package tonemap

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/MeKo-Tech/flamecanvas/internal/accum"
)

// Mode selects a tone mapping.
type Mode int

const (
	Binary Mode = iota
	Linear
	Logarithmic
	Color
)

var modeNames = map[Mode]string{
	Binary:      "binary",
	Linear:      "linear",
	Logarithmic: "logarithmic",
	Color:       "color",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode resolves a mode name. "log" is accepted for logarithmic.
func ParseMode(name string) (Mode, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "log" {
		return Logarithmic, nil
	}
	for m, s := range modeNames {
		if s == n {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown tone mapping %q", name)
}

// MapBinary paints opaque black wherever a pixel was visited at least once.
// Unvisited pixels stay transparent.
func MapBinary(h *accum.Histogram) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, h.Width, h.Height))
	for i, c := range h.Counts {
		if c > 0 {
			img.Pix[i*4+3] = 0xff
		}
	}
	return img
}

// MapLinear sets opacity to count/max.
func MapLinear(h *accum.Histogram) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, h.Width, h.Height))
	hMax := float64(h.Max())
	if hMax == 0 {
		return img
	}
	for i, c := range h.Counts {
		img.Pix[i*4+3] = to8(float64(c) / hMax)
	}
	return img
}

// MapLogarithmic sets opacity to log(count)/log(max). Empty pixels are
// transparent. When the densest pixel was hit only once every visited pixel
// is fully opaque.
func MapLogarithmic(h *accum.Histogram) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, h.Width, h.Height))
	hMax := h.Max()
	if hMax == 0 {
		return img
	}
	logMax := math.Log(float64(hMax))
	for i, c := range h.Counts {
		switch {
		case c == 0:
		case hMax == 1:
			img.Pix[i*4+3] = 0xff
		default:
			img.Pix[i*4+3] = to8(math.Log(float64(c)) / logMax)
		}
	}
	return img
}

// ColorScale is the density-compensated brightness factor applied to a pixel
// hit alpha times: log10(alpha) / (alpha * 1.5). It is zero for alpha <= 0.
func ColorScale(alpha float64) float64 {
	if alpha <= 0 {
		return 0
	}
	return math.Log10(alpha) / (alpha * 1.5)
}

// MapColor scales the accumulated palette sums by ColorScale. Pixels that
// were never hit come out fully transparent.
func MapColor(b *accum.ColorBuffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, a := range b.Alpha {
		if a <= 0 {
			continue
		}
		s := ColorScale(a)
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		p[0] = to8(b.Red[i] * s)
		p[1] = to8(b.Green[i] * s)
		p[2] = to8(b.Blue[i] * s)
		p[3] = to8(a * s)
	}
	return img
}

// Map dispatches to the monochrome mapping selected by m. Color mode needs a
// ColorBuffer and is handled by MapColor.
func Map(m Mode, h *accum.Histogram) (*image.NRGBA, error) {
	switch m {
	case Binary:
		return MapBinary(h), nil
	case Linear:
		return MapLinear(h), nil
	case Logarithmic:
		return MapLogarithmic(h), nil
	default:
		return nil, fmt.Errorf("tone mapping %s needs a color buffer", m)
	}
}

// to8 maps a [0,1] fraction to a byte. NaN and negatives clamp to 0, values
// above 1 clamp to 255.
func to8(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(math.Round(v * 0xff))
}
