package preset

import (
	"fmt"

	"github.com/MeKo-Tech/flamecanvas/internal/flame"
	"github.com/MeKo-Tech/flamecanvas/internal/tonemap"
)

// Reference parameters of the example flame.
const (
	weight1 = 0.56453495
	weight2 = 0.013135
	weight3 = 0.42233

	color1 = 0
	color2 = 0.844
	color3 = 0.349

	colorSpeed = 0.5
)

var (
	coefs1 = flame.Coefs{A: -1.381068, B: -1.381068, C: 0, D: 1.381068, E: -1.381068, F: 0}
	coefs2 = flame.Coefs{A: 0.031393, B: 0.031367, C: 0, D: -0.031367, E: 0.031393, F: 0}
	coefs3 = flame.Coefs{A: 1.51523, B: -3.048677, C: 0.724135, D: 0.740356, E: -1.455964, F: -0.362059}

	post2      = flame.Coefs{A: 1, C: 0.241352, E: 1, F: 0.271521}
	finalCoefs = flame.Coefs{A: 2, E: 2}

	pdjParams = flame.PDJParams{A: 1.09358, B: 2.13048, C: 2.54127, D: 2.37267}
)

func single(kind flame.Kind) flame.Blend {
	return flame.Blend{{Weight: 1, Variation: flame.Variation{Kind: kind}}}
}

func gasketTransforms() []flame.Choice[*flame.Transform] {
	return []flame.Choice[*flame.Transform]{
		{Weight: 1.0 / 3, Value: &flame.Transform{Coefs: flame.Coefs{A: 0.5, E: 0.5}, Blend: single(flame.Linear)}},
		{Weight: 1.0 / 3, Value: &flame.Transform{Coefs: flame.Coefs{A: 0.5, C: 0.5, E: 0.5}, Blend: single(flame.Linear)}},
		{Weight: 1.0 / 3, Value: &flame.Transform{Coefs: flame.Coefs{A: 0.5, E: 0.5, F: 0.5}, Blend: single(flame.Linear)}},
	}
}

// referenceTransforms builds the three example transforms. withPost attaches
// the post transform to the second one.
func referenceTransforms(withPost bool) []flame.Choice[*flame.Transform] {
	t2 := &flame.Transform{
		Coefs: coefs2,
		Blend: flame.Blend{
			{Weight: 1, Variation: flame.Variation{Kind: flame.Linear}},
			{Weight: 1, Variation: flame.Variation{Kind: flame.Popcorn}},
		},
		Color:      color2,
		ColorSpeed: colorSpeed,
	}
	if withPost {
		p := post2
		t2.Post = &p
	}
	return []flame.Choice[*flame.Transform]{
		{Weight: weight1, Value: &flame.Transform{Coefs: coefs1, Blend: single(flame.Julia), Color: color1, ColorSpeed: colorSpeed}},
		{Weight: weight2, Value: t2},
		{Weight: weight3, Value: &flame.Transform{
			Coefs:      coefs3,
			Blend:      flame.Blend{{Weight: 1, Variation: flame.NewPDJ(pdjParams)}},
			Color:      color3,
			ColorSpeed: colorSpeed,
		}},
	}
}

func referenceFinal() *flame.Transform {
	return &flame.Transform{Coefs: finalCoefs, Blend: single(flame.Julia)}
}

func gasketPreset() Preset {
	return Preset{
		Name:        "gasket",
		Description: "Sierpinski gasket through the unit camera",
		Transforms:  gasketTransforms(),
		Mode:        tonemap.Binary,
		Quality:     1,
		Camera:      Camera{Kind: CameraUnit},
	}
}

func gasketFlamePreset() Preset {
	return Preset{
		Name:        "gasket-flame",
		Description: "Sierpinski gasket through the [-2, 2] camera",
		Transforms:  gasketTransforms(),
		Mode:        tonemap.Binary,
		Quality:     1,
		Camera:      Camera{Kind: CameraSquare},
	}
}

func baselinePreset() Preset {
	return Preset{
		Name:        "baseline",
		Description: "Reference transforms without post or final transforms",
		Transforms:  referenceTransforms(false),
		Mode:        tonemap.Binary,
		Quality:     1,
		Camera:      Camera{Kind: CameraSquare},
	}
}

func postPreset() Preset {
	p := baselinePreset()
	p.Name = "post"
	p.Description = "Reference transforms with the post transform"
	p.Transforms = referenceTransforms(true)
	return p
}

func finalPreset() Preset {
	p := postPreset()
	p.Name = "final"
	p.Description = "Reference transforms with post and final transforms"
	p.Final = referenceFinal()
	return p
}

func toneMapped(name string, mode tonemap.Mode, quality float64) Preset {
	p := finalPreset()
	p.Name = name
	p.Description = "Reference flame, " + mode.String() + " tone mapping"
	p.Mode = mode
	p.Quality = quality
	return p
}

func colorPreset() Preset {
	p := finalPreset()
	p.Name = "color"
	p.Description = "Reference flame colored with the reference palette"
	p.Mode = tonemap.Color
	p.Palette = "reference"
	p.Quality = 15
	return p
}

func cameraPreset() Preset {
	p := colorPreset()
	p.Name = "camera"
	p.Description = "Reference flame through a rotated, zoomed view with final color mixing"
	p.Quality = 10
	p.Palette = "classic"
	p.MixFinalColor = true
	p.Final.ColorSpeed = 0.5
	p.Camera = Camera{Kind: CameraView, OffsetX: 0.1, OffsetY: -0.2, Rotate: 0.3, Zoom: 0.5}
	return p
}

func soloPreset(index int) Preset {
	p := toneMapped("solo", tonemap.Logarithmic, 10)
	p.Name = fmt.Sprintf("solo%d", index+1)
	p.Description = "Only points produced by one reference transform"
	p.Solo = &index
	return p
}
