package tonemap

import (
	"image"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
)

// PostOptions are optional output filters applied after tone mapping.
type PostOptions struct {
	// Gamma adjusts midtones. 0 and 1 leave the image untouched.
	Gamma float32
	// Blur is the gaussian sigma in pixels. 0 disables blurring.
	Blur float32
	// Supersample is the factor the image was rendered above its output size.
	// Values <= 1 disable downscaling.
	Supersample int
}

// IsZero reports whether the options would leave the image unchanged.
func (o PostOptions) IsZero() bool {
	return (o.Gamma == 0 || o.Gamma == 1) && o.Blur <= 0 && o.Supersample <= 1
}

// PostProcess applies gamma and blur, then downscales by Supersample.
func PostProcess(img *image.NRGBA, opts PostOptions) *image.NRGBA {
	if opts.IsZero() {
		return img
	}

	var filters []gift.Filter
	if opts.Gamma != 0 && opts.Gamma != 1 {
		filters = append(filters, gift.Gamma(opts.Gamma))
	}
	if opts.Blur > 0 {
		filters = append(filters, gift.GaussianBlur(opts.Blur))
	}

	out := img
	if len(filters) > 0 {
		g := gift.New(filters...)
		out = image.NewNRGBA(g.Bounds(img.Bounds()))
		g.Draw(out, img)
	}

	if opts.Supersample > 1 {
		out = Downscale(out, opts.Supersample)
	}
	return out
}

// Downscale shrinks img by factor with Lanczos resampling.
func Downscale(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, b.Dx()/factor)
	h := max(1, b.Dy()/factor)
	resized := resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
	return toNRGBA(resized)
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	out := image.NewNRGBA(img.Bounds())
	gift.New().Draw(out, img)
	return out
}
