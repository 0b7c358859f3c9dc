package preset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/flamecanvas/internal/flame"
	"github.com/MeKo-Tech/flamecanvas/internal/tonemap"
)

// File is the on-disk form of a preset, shared by the YAML and TOML encodings.
// Coefficients are written in the order a, b, c, d, e, f.
type File struct {
	Name          string          `yaml:"name" toml:"name"`
	Description   string          `yaml:"description,omitempty" toml:"description,omitempty"`
	Mode          string          `yaml:"mode" toml:"mode"`
	Palette       string          `yaml:"palette,omitempty" toml:"palette,omitempty"`
	MixFinalColor bool            `yaml:"mix_final_color,omitempty" toml:"mix_final_color,omitempty"`
	Quality       float64         `yaml:"quality" toml:"quality"`
	Solo          *int            `yaml:"solo,omitempty" toml:"solo,omitempty"`
	Camera        FileCamera      `yaml:"camera,omitempty" toml:"camera,omitempty"`
	Transforms    []FileTransform `yaml:"transforms" toml:"transforms"`
	Final         *FileTransform  `yaml:"final,omitempty" toml:"final,omitempty"`
}

// FileCamera is the on-disk form of Camera.
type FileCamera struct {
	Kind    string  `yaml:"kind,omitempty" toml:"kind,omitempty"`
	OffsetX float64 `yaml:"offset_x,omitempty" toml:"offset_x,omitempty"`
	OffsetY float64 `yaml:"offset_y,omitempty" toml:"offset_y,omitempty"`
	Rotate  float64 `yaml:"rotate,omitempty" toml:"rotate,omitempty"`
	Zoom    float64 `yaml:"zoom,omitempty" toml:"zoom,omitempty"`
	Scale   float64 `yaml:"scale,omitempty" toml:"scale,omitempty"`
}

// FileTransform is the on-disk form of a weighted transform.
type FileTransform struct {
	Weight     float64         `yaml:"weight,omitempty" toml:"weight,omitempty"`
	Coefs      []float64       `yaml:"coefs,flow" toml:"coefs"`
	Post       []float64       `yaml:"post,flow,omitempty" toml:"post,omitempty"`
	Color      float64         `yaml:"color,omitempty" toml:"color,omitempty"`
	ColorSpeed float64         `yaml:"color_speed,omitempty" toml:"color_speed,omitempty"`
	Variations []FileVariation `yaml:"variations" toml:"variations"`
}

// FileVariation is one weighted variation. Params is only used by pdj.
type FileVariation struct {
	Kind   string    `yaml:"kind" toml:"kind"`
	Weight float64   `yaml:"weight" toml:"weight"`
	Params []float64 `yaml:"params,flow,omitempty" toml:"params,omitempty"`
}

// Format is a flame file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported flame file extension %q (use .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Load reads a flame file and converts it to a Preset.
func Load(path string) (Preset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Preset{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("failed to read flame file: %w", err)
	}
	f, err := Decode(data, format)
	if err != nil {
		return Preset{}, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f.Preset()
}

// Decode parses a flame file in the given format.
func Decode(data []byte, format Format) (File, error) {
	var f File
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("failed to decode YAML: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return File{}, fmt.Errorf("failed to decode TOML: %w", err)
		}
	default:
		return File{}, fmt.Errorf("unsupported format %q", format)
	}
	return f, nil
}

// Encode writes f to w in the given format.
func (f File) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(f); err != nil {
			return fmt.Errorf("failed to encode TOML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Marshal encodes f into a byte slice.
func (f File) Marshal(format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Preset validates the file contents and builds a Preset.
func (f File) Preset() (Preset, error) {
	mode := tonemap.Logarithmic
	if f.Mode != "" {
		m, err := tonemap.ParseMode(f.Mode)
		if err != nil {
			return Preset{}, err
		}
		mode = m
	}
	quality := f.Quality
	if quality == 0 {
		quality = 1
	}
	if len(f.Transforms) == 0 {
		return Preset{}, fmt.Errorf("flame %q has no transforms", f.Name)
	}

	p := Preset{
		Name:          f.Name,
		Description:   f.Description,
		Mode:          mode,
		Palette:       f.Palette,
		MixFinalColor: f.MixFinalColor,
		Quality:       quality,
		Solo:          f.Solo,
		Camera: Camera{
			Kind:    f.Camera.Kind,
			OffsetX: f.Camera.OffsetX,
			OffsetY: f.Camera.OffsetY,
			Rotate:  f.Camera.Rotate,
			Zoom:    f.Camera.Zoom,
			Scale:   f.Camera.Scale,
		},
	}
	for i, ft := range f.Transforms {
		t, err := ft.transform()
		if err != nil {
			return Preset{}, fmt.Errorf("transform %d: %w", i, err)
		}
		p.Transforms = append(p.Transforms, flame.Choice[*flame.Transform]{Weight: ft.Weight, Value: t})
	}
	if f.Final != nil {
		t, err := f.Final.transform()
		if err != nil {
			return Preset{}, fmt.Errorf("final transform: %w", err)
		}
		p.Final = t
	}
	return p, nil
}

func (ft FileTransform) transform() (*flame.Transform, error) {
	coefs, err := coefsFromSlice(ft.Coefs)
	if err != nil {
		return nil, err
	}
	t := &flame.Transform{Coefs: coefs, Color: ft.Color, ColorSpeed: ft.ColorSpeed}
	if ft.Post != nil {
		post, err := coefsFromSlice(ft.Post)
		if err != nil {
			return nil, fmt.Errorf("post: %w", err)
		}
		t.Post = &post
	}
	if len(ft.Variations) == 0 {
		return nil, fmt.Errorf("no variations")
	}
	for _, fv := range ft.Variations {
		kind, err := flame.ParseKind(fv.Kind)
		if err != nil {
			return nil, err
		}
		v := flame.Variation{Kind: kind}
		if kind == flame.PDJ {
			if len(fv.Params) != 4 {
				return nil, fmt.Errorf("pdj needs 4 params, got %d", len(fv.Params))
			}
			v.Params = flame.PDJParams{A: fv.Params[0], B: fv.Params[1], C: fv.Params[2], D: fv.Params[3]}
		}
		t.Blend = append(t.Blend, flame.BlendEntry{Weight: fv.Weight, Variation: v})
	}
	return t, nil
}

func coefsFromSlice(v []float64) (flame.Coefs, error) {
	if len(v) != 6 {
		return flame.Coefs{}, fmt.Errorf("expected 6 coefficients, got %d", len(v))
	}
	return flame.Coefs{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}, nil
}

// ToFile converts p back into its on-disk form.
func ToFile(p Preset) File {
	f := File{
		Name:          p.Name,
		Description:   p.Description,
		Mode:          p.Mode.String(),
		Palette:       p.Palette,
		MixFinalColor: p.MixFinalColor,
		Quality:       p.Quality,
		Solo:          p.Solo,
		Camera: FileCamera{
			Kind:    p.Camera.Kind,
			OffsetX: p.Camera.OffsetX,
			OffsetY: p.Camera.OffsetY,
			Rotate:  p.Camera.Rotate,
			Zoom:    p.Camera.Zoom,
			Scale:   p.Camera.Scale,
		},
	}
	for _, c := range p.Transforms {
		ft := fileTransform(c.Value)
		ft.Weight = c.Weight
		f.Transforms = append(f.Transforms, ft)
	}
	if p.Final != nil {
		ft := fileTransform(p.Final)
		f.Final = &ft
	}
	return f
}

func fileTransform(t *flame.Transform) FileTransform {
	ft := FileTransform{
		Coefs:      coefsToSlice(t.Coefs),
		Color:      t.Color,
		ColorSpeed: t.ColorSpeed,
	}
	if t.Post != nil {
		ft.Post = coefsToSlice(*t.Post)
	}
	for _, e := range t.Blend {
		fv := FileVariation{Kind: e.Variation.Kind.String(), Weight: e.Weight}
		if e.Variation.Kind == flame.PDJ {
			p := e.Variation.Params
			fv.Params = []float64{p.A, p.B, p.C, p.D}
		}
		ft.Variations = append(ft.Variations, fv)
	}
	return ft
}

func coefsToSlice(c flame.Coefs) []float64 {
	return []float64{c.A, c.B, c.C, c.D, c.E, c.F}
}
