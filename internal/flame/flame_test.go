package flame

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestIdentityLinearTransform(t *testing.T) {
	tr := &Transform{
		Coefs: Identity,
		Blend: Blend{{Weight: 1, Variation: Variation{Kind: Linear}}},
	}
	rng := newRand(1)

	points := [][2]float64{{0, 0}, {1, -1}, {-1.75, 0.25}, {123.5, -9e6}, {1e-12, 3}}
	for _, p := range points {
		x, y := tr.Apply(p[0], p[1], rng)
		assert.Equal(t, p[0], x)
		assert.Equal(t, p[1], y)
	}
}

func TestPostTransform(t *testing.T) {
	base := Transform{
		Coefs: Identity,
		Blend: Blend{{Weight: 1, Variation: Variation{Kind: Linear}}},
	}

	identity := base
	identity.Post = &Coefs{A: 1, E: 1}
	x, y := identity.Apply(0.5, -0.25, nil)
	assert.Equal(t, 0.5, x)
	assert.Equal(t, -0.25, y)

	shifted := base
	shifted.Post = &Coefs{A: 2, C: 1, E: 1, F: -1}
	x, y = shifted.Apply(0.5, -0.25, nil)
	assert.Equal(t, 2.0, x)
	assert.Equal(t, -1.25, y)
}

func TestCoefsApply(t *testing.T) {
	c := Coefs{A: 1, B: 2, C: 3, D: 4, E: 5, F: 6}
	x, y := c.Apply(1, 1)
	assert.Equal(t, 6.0, x)
	assert.Equal(t, 15.0, y)
	assert.True(t, Identity.IsIdentity())
	assert.False(t, c.IsIdentity())
}

func TestJuliaClosedForm(t *testing.T) {
	x, y := 0.6, 0.8
	r := 1.0
	theta := math.Atan2(x, y)

	gx, gy := JuliaOmega(x, y, 0)
	assert.InDelta(t, math.Sqrt(r)*math.Cos(theta/2), gx, 1e-12)
	assert.InDelta(t, math.Sqrt(r)*math.Sin(theta/2), gy, 1e-12)

	px, py := JuliaOmega(x, y, math.Pi)
	assert.InDelta(t, -gx, px, 1e-12)
	assert.InDelta(t, -gy, py, 1e-12)
}

func TestJuliaPicksBothBranches(t *testing.T) {
	v := Variation{Kind: Julia}
	rng := newRand(7)
	var pos, neg int
	for i := 0; i < 1000; i++ {
		x, _ := v.Apply(0.6, 0.8, Identity, rng)
		if x > 0 {
			pos++
		} else {
			neg++
		}
	}
	assert.Greater(t, pos, 400)
	assert.Greater(t, neg, 400)
}

func TestPopcornUsesOwnerCoefs(t *testing.T) {
	v := Variation{Kind: Popcorn}
	coefs := Coefs{A: 1, C: 0.5, E: 1, F: -0.25}
	x, y := v.Apply(0.1, 0.2, coefs, nil)
	assert.InDelta(t, 0.1+0.5*math.Sin(math.Tan(0.6)), x, 1e-12)
	assert.InDelta(t, 0.2-0.25*math.Sin(math.Tan(0.3)), y, 1e-12)
}

func TestPopcornDivergenceDoesNotPanic(t *testing.T) {
	v := Variation{Kind: Popcorn}
	x, y := v.Apply(math.Pi/6, math.Pi/6, Coefs{C: 1, F: 1}, nil)
	// tan(π/2) is huge but finite in float64, so sin of it stays bounded.
	assert.False(t, math.IsNaN(x) || math.IsInf(x, 0))
	assert.False(t, math.IsNaN(y) || math.IsInf(y, 0))
}

func TestPDJ(t *testing.T) {
	p := PDJParams{A: 1.09358, B: 2.13048, C: 2.54127, D: 2.37267}
	v := NewPDJ(p)
	x, y := v.Apply(0.3, -0.4, Identity, nil)
	assert.InDelta(t, math.Sin(p.A*-0.4)-math.Cos(p.B*0.3), x, 1e-12)
	assert.InDelta(t, math.Sin(p.C*0.3)-math.Cos(p.D*-0.4), y, 1e-12)
}

func TestBlendIsLinearCombination(t *testing.T) {
	b := Blend{
		{Weight: 0.5, Variation: Variation{Kind: Linear}},
		{Weight: 0.75, Variation: Variation{Kind: Linear}},
	}
	x, y := b.Apply(2, -4, Identity, nil)
	assert.InDelta(t, 2.5, x, 1e-12)
	assert.InDelta(t, -5.0, y, 1e-12)
}

func TestTransformPostApplied(t *testing.T) {
	post := Coefs{A: 1, C: 0.24, E: 1, F: 0.27}
	tr := &Transform{
		Coefs: Coefs{A: 0.5, E: 0.5},
		Blend: Blend{{Weight: 1, Variation: Variation{Kind: Linear}}},
		Post:  &post,
	}
	x, y := tr.Apply(1, 1, nil)
	assert.InDelta(t, 0.74, x, 1e-12)
	assert.InDelta(t, 0.77, y, 1e-12)
}

func TestMixColor(t *testing.T) {
	assert.InDelta(t, 0.5, MixColor(0, 1, 0.5), 1e-12)
	assert.InDelta(t, 0.2, MixColor(0.2, 0.9, 0), 1e-12)
	assert.InDelta(t, 0.9, MixColor(0.2, 0.9, 1), 1e-12)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Linear, Julia, Popcorn, PDJ} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind(" Julia ")
	require.NoError(t, err)
	assert.Equal(t, Julia, got)

	_, err = ParseKind("spherical")
	assert.Error(t, err)
}

func TestChooserDistribution(t *testing.T) {
	weights := []float64{0.56453495, 0.013135, 0.42233}
	choices := make([]Choice[int], len(weights))
	sum := 0.0
	for i, w := range weights {
		choices[i] = Choice[int]{Weight: w, Value: i}
		sum += w
	}
	c, err := NewChooser(choices)
	require.NoError(t, err)

	const n = 200_000
	counts := make([]int, len(weights))
	rng := newRand(42)
	for i := 0; i < n; i++ {
		idx, v := c.Pick(rng.Float64())
		require.Equal(t, idx, v)
		counts[idx]++
	}

	tol := 5 / math.Sqrt(n)
	for i, w := range weights {
		assert.InDelta(t, w/sum, float64(counts[i])/n, tol, "index %d", i)
	}
}

func TestChooserFallsBackToLast(t *testing.T) {
	c, err := NewChooser([]Choice[string]{{Weight: 1, Value: "a"}, {Weight: 1, Value: "b"}})
	require.NoError(t, err)

	// u = 1 never occurs from Float64 but models rounding past the end of the walk.
	idx, v := c.Pick(1)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "b", v)

	idx, v = c.Pick(0)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "a", v)
}

func TestChooserRejectsInvalidWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    error
	}{
		{"empty", nil, ErrNoChoices},
		{"all zero", []float64{0, 0}, ErrInvalidWeight},
		{"negative", []float64{1, -0.5}, ErrInvalidWeight},
		{"nan", []float64{math.NaN()}, ErrInvalidWeight},
		{"inf", []float64{math.Inf(1), 1}, ErrInvalidWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choices := make([]Choice[int], len(tt.weights))
			for i, w := range tt.weights {
				choices[i] = Choice[int]{Weight: w, Value: i}
			}
			_, err := NewChooser(choices)
			assert.ErrorIs(t, err, tt.want)

			_, _, err = Choose(newRand(1), choices)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChooseSkipsZeroWeight(t *testing.T) {
	choices := []Choice[int]{{Weight: 0, Value: 0}, {Weight: 1, Value: 1}}
	rng := newRand(3)
	for i := 0; i < 100; i++ {
		idx, _, err := Choose(rng, choices)
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
	}
}
