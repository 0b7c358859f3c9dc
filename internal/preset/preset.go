// Package preset holds named flame parameter sets and flame parameter files.
//
// Presets are built fresh on every lookup so callers can never share or
// mutate the transforms of a render that is already running.
package preset

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/flamecanvas/internal/camera"
	"github.com/MeKo-Tech/flamecanvas/internal/chaos"
	"github.com/MeKo-Tech/flamecanvas/internal/flame"
	"github.com/MeKo-Tech/flamecanvas/internal/palette"
	"github.com/MeKo-Tech/flamecanvas/internal/tonemap"
)

// Camera kinds.
const (
	CameraView   = "view"
	CameraSquare = "square"
	CameraUnit   = "unit"
)

// Camera describes how a preset projects IFS space onto the image.
type Camera struct {
	Kind    string
	OffsetX float64
	OffsetY float64
	Rotate  float64
	Zoom    float64
	// Scale is pixels per IFS unit. Zero fits [-2, 2] across the larger side.
	Scale float64
}

// Projector builds the camera for a width x height image.
func (c Camera) Projector(width, height int) (camera.Projector, error) {
	switch strings.ToLower(c.Kind) {
	case CameraUnit:
		return camera.Unit{Width: width, Height: height}, nil
	case CameraSquare:
		return camera.Square{Size: min(width, height)}, nil
	case "", CameraView:
		v := camera.NewView(width, height)
		v.OffsetX, v.OffsetY = c.OffsetX, c.OffsetY
		v.Rotate, v.Zoom = c.Rotate, c.Zoom
		if c.Scale != 0 {
			v.Scale = c.Scale
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown camera kind %q", c.Kind)
	}
}

// Preset is a complete set of render parameters, independent of image size.
type Preset struct {
	Name        string
	Description string

	Transforms []flame.Choice[*flame.Transform]
	Final      *flame.Transform

	Mode          tonemap.Mode
	Palette       string
	MixFinalColor bool
	Quality       float64
	Camera        Camera
	Solo          *int
}

// Config builds the chaos game configuration for a width x height render.
func (p Preset) Config(width, height int) (chaos.Config, error) {
	cam, err := p.Camera.Projector(width, height)
	if err != nil {
		return chaos.Config{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	cfg := chaos.Config{
		Width:         width,
		Height:        height,
		Transforms:    p.Transforms,
		Final:         p.Final,
		Camera:        cam,
		Mode:          p.Mode,
		MixFinalColor: p.MixFinalColor,
		Quality:       p.Quality,
		Solo:          p.Solo,
	}
	if p.Mode == tonemap.Color {
		pal, err := palette.Named(p.Palette)
		if err != nil {
			return chaos.Config{}, fmt.Errorf("preset %s: %w", p.Name, err)
		}
		cfg.Palette = pal
	}
	return cfg, nil
}

var builtins = map[string]func() Preset{
	"gasket":       gasketPreset,
	"gasket-flame": gasketFlamePreset,
	"baseline":     baselinePreset,
	"post":         postPreset,
	"final":        finalPreset,
	"binary":       func() Preset { return toneMapped("binary", tonemap.Binary, 1) },
	"linear":       func() Preset { return toneMapped("linear", tonemap.Linear, 10) },
	"logarithmic":  func() Preset { return toneMapped("logarithmic", tonemap.Logarithmic, 10) },
	"color":        colorPreset,
	"camera":       cameraPreset,
	"solo1":        func() Preset { return soloPreset(0) },
	"solo2":        func() Preset { return soloPreset(1) },
	"solo3":        func() Preset { return soloPreset(2) },
}

// Names returns the built-in preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Lookup returns a freshly built copy of the named preset.
func Lookup(name string) (Preset, error) {
	build, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return build(), nil
}

// All returns every built-in preset in name order.
func All() []Preset {
	names := Names()
	out := make([]Preset, 0, len(names))
	for _, n := range names {
		out = append(out, builtins[n]())
	}
	return out
}
