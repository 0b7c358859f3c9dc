// Package chaos runs the fractal flame chaos game.
//
// A Game owns the running point, its color and the accumulation buffers for a
// single render. It is resumable: callers advance it in chunks and receive a
// tone-mapped Snapshot after each chunk, so a host can display progress,
// yield to other work or stop early. A Game is not safe for concurrent use;
// independent renders run as independent Games.
package chaos

import (
	"context"
	"errors"
	"fmt"
	"image"
	"iter"
	"math"
	"math/rand/v2"

	"github.com/MeKo-Tech/flamecanvas/internal/accum"
	"github.com/MeKo-Tech/flamecanvas/internal/camera"
	"github.com/MeKo-Tech/flamecanvas/internal/flame"
	"github.com/MeKo-Tech/flamecanvas/internal/palette"
	"github.com/MeKo-Tech/flamecanvas/internal/tonemap"
)

const (
	// DefaultWarmUp is the number of leading iterations that are never plotted.
	DefaultWarmUp = 20
	// DefaultStep is the number of iterations between progress snapshots.
	DefaultStep = 100_000
)

// Config describes one render. Transforms, Final and Palette must not be
// modified while a Game built from them is running.
type Config struct {
	Width, Height int

	// Transforms are selected with probability proportional to their weight.
	Transforms []flame.Choice[*flame.Transform]
	// Final, when set, is applied to every plotted point. Its output never
	// feeds back into the iteration.
	Final *flame.Transform

	// Camera projects IFS coordinates to pixels. Nil selects
	// camera.NewView(Width, Height), which shows [-2, 2].
	Camera camera.Projector

	Mode    tonemap.Mode
	Palette palette.Palette
	// MixFinalColor blends the final transform's color into the plotted color.
	MixFinalColor bool

	// Quality scales the iteration budget: Quality * Width * Height.
	Quality float64
	// Step is the number of iterations between snapshots. Zero selects DefaultStep.
	Step int
	// WarmUp is the index after which points are plotted. Zero selects
	// DefaultWarmUp; negative values plot from the first iteration.
	WarmUp int

	// Solo restricts plotting to points produced by the transform at this index.
	Solo *int
}

// Snapshot is the tone-mapped state of a Game after some number of iterations.
type Snapshot struct {
	Iteration int
	Total     int
	// Plotted counts the points accumulated so far.
	Plotted uint64
	Done    bool
	Image   *image.NRGBA
}

// Progress returns the fraction of the budget completed.
func (s Snapshot) Progress() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Iteration) / float64(s.Total)
}

// Game is a running chaos game.
type Game struct {
	cfg     Config
	chooser *flame.Chooser[*flame.Transform]
	cam     camera.Projector
	rng     *rand.Rand

	hist   *accum.Histogram
	colors *accum.ColorBuffer

	x, y, c float64

	i        int
	total    int
	step     int
	warmUp   int
	finished bool

	plotted uint64
	dropped uint64
}

// New validates cfg and allocates the accumulation buffers. The starting point
// is drawn uniformly from [-1, 1]² and the starting color from [0, 1) using rng.
func New(cfg Config, rng *rand.Rand) (*Game, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", cfg.Width, cfg.Height)
	}
	if !(cfg.Quality > 0) || math.IsInf(cfg.Quality, 0) {
		return nil, fmt.Errorf("invalid quality %v", cfg.Quality)
	}
	if cfg.Step < 0 {
		return nil, fmt.Errorf("invalid step %d", cfg.Step)
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	chooser, err := flame.NewChooser(cfg.Transforms)
	if err != nil {
		return nil, fmt.Errorf("transforms: %w", err)
	}
	for i, t := range cfg.Transforms {
		if t.Value == nil {
			return nil, fmt.Errorf("transforms: entry %d is nil", i)
		}
	}
	if cfg.Solo != nil && (*cfg.Solo < 0 || *cfg.Solo >= len(cfg.Transforms)) {
		return nil, fmt.Errorf("solo index %d out of range [0, %d)", *cfg.Solo, len(cfg.Transforms))
	}

	budget := math.Ceil(cfg.Quality * float64(cfg.Width) * float64(cfg.Height))
	if budget >= math.MaxInt {
		return nil, fmt.Errorf("quality %v is too high for %dx%d: iteration budget %.3g exceeds %d",
			cfg.Quality, cfg.Width, cfg.Height, budget, math.MaxInt)
	}

	g := &Game{
		cfg:     cfg,
		chooser: chooser,
		cam:     cfg.Camera,
		rng:     rng,
		total:   int(budget),
		step:    cfg.Step,
		warmUp:  cfg.WarmUp,
	}
	if g.cam == nil {
		g.cam = camera.NewView(cfg.Width, cfg.Height)
	}
	if g.step == 0 {
		g.step = DefaultStep
	}
	if g.warmUp == 0 {
		g.warmUp = DefaultWarmUp
	}

	switch cfg.Mode {
	case tonemap.Color:
		if len(cfg.Palette) == 0 {
			return nil, errors.New("color mode requires a palette")
		}
		g.colors = accum.NewColorBuffer(cfg.Width, cfg.Height)
	case tonemap.Binary, tonemap.Linear, tonemap.Logarithmic:
		g.hist = accum.NewHistogram(cfg.Width, cfg.Height)
	default:
		return nil, fmt.Errorf("unsupported tone mapping %s", cfg.Mode)
	}

	g.x = rng.Float64()*2 - 1
	g.y = rng.Float64()*2 - 1
	g.c = rng.Float64()
	return g, nil
}

// iterate performs one chaos game iteration.
func (g *Game) iterate() {
	index, t := g.chooser.Pick(g.rng.Float64())
	g.x, g.y = t.Apply(g.x, g.y, g.rng)
	g.c = flame.MixColor(g.c, t.Color, t.ColorSpeed)

	i := g.i
	g.i++
	if i <= g.warmUp {
		return
	}
	if g.cfg.Solo != nil && index != *g.cfg.Solo {
		return
	}

	px, py, pc := g.x, g.y, g.c
	if f := g.cfg.Final; f != nil {
		px, py = f.Apply(px, py, g.rng)
		if g.cfg.MixFinalColor {
			pc = flame.MixColor(pc, f.Color, f.ColorSpeed)
		}
	}
	g.plot(px, py, pc)
}

func (g *Game) plot(x, y, c float64) {
	px, py := g.cam.Project(x, y)
	if !camera.InBounds(px, py, g.cfg.Width, g.cfg.Height) {
		g.dropped++
		return
	}
	var ok bool
	if g.colors != nil {
		ok = g.colors.Add(px, py, g.cfg.Palette.Lookup(c))
	} else {
		ok = g.hist.Add(px, py)
	}
	if ok {
		g.plotted++
	} else {
		g.dropped++
	}
}

// Step advances the game by up to n iterations and returns a snapshot.
// Once the budget is exhausted Step performs no work and keeps returning the
// final snapshot.
func (g *Game) Step(n int) Snapshot {
	for ; n > 0 && g.i < g.total; n-- {
		g.iterate()
	}
	return g.Snapshot()
}

// Next advances to the next checkpoint and returns its snapshot. Checkpoints
// fall after the first iteration, then every Step iterations, followed by a
// final snapshot once the budget is exhausted. Next reports false after the
// final snapshot has been returned.
func (g *Game) Next() (Snapshot, bool) {
	if g.finished {
		return Snapshot{}, false
	}
	for g.i < g.total {
		i := g.i
		g.iterate()
		if i%g.step == 0 && g.i < g.total {
			return g.Snapshot(), true
		}
	}
	g.finished = true
	return g.Snapshot(), true
}

// Snapshots yields every checkpoint snapshot in order, ending with the final one.
// Breaking out of the loop leaves the game resumable.
func (g *Game) Snapshots() iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		for {
			s, ok := g.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}

// Run drives the game to completion, calling fn for every checkpoint snapshot.
// It stops early when ctx is cancelled or fn returns an error.
func (g *Game) Run(ctx context.Context, fn func(Snapshot) error) error {
	for s := range g.Snapshots() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if fn == nil {
			continue
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// Snapshot tone-maps the current accumulation state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Iteration: g.i,
		Total:     g.total,
		Plotted:   g.plotted,
		Done:      g.Done(),
		Image:     g.Image(),
	}
}

// Image tone-maps the current accumulation state into a new image.
func (g *Game) Image() *image.NRGBA {
	if g.colors != nil {
		return tonemap.MapColor(g.colors)
	}
	img, err := tonemap.Map(g.cfg.Mode, g.hist)
	if err != nil {
		// New only allocates a histogram for monochrome modes.
		panic(err)
	}
	return img
}

// Done reports whether the iteration budget is exhausted.
func (g *Game) Done() bool {
	return g.i >= g.total
}

// Iteration returns the number of iterations performed.
func (g *Game) Iteration() int { return g.i }

// Total returns the iteration budget.
func (g *Game) Total() int { return g.total }

// Histogram returns the visit counts. In color mode it is derived from the
// hit counts of the color buffer.
func (g *Game) Histogram() *accum.Histogram {
	if g.colors != nil {
		return g.colors.Histogram()
	}
	return g.hist
}

// Colors returns the color buffer, or nil for monochrome modes.
func (g *Game) Colors() *accum.ColorBuffer { return g.colors }

// Stats reports how many plotted points landed inside and outside the image.
func (g *Game) Stats() (plotted, dropped uint64) {
	return g.plotted, g.dropped
}
