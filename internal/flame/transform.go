package flame

import "math/rand/v2"

// BlendEntry is one weighted variation in a Blend.
type BlendEntry struct {
	Weight    float64
	Variation Variation
}

// Blend is an ordered linear combination of variations. Weights need not sum to 1.
type Blend []BlendEntry

// Apply evaluates every variation at (x, y) and sums the weighted results.
func (b Blend) Apply(x, y float64, coefs Coefs, rng *rand.Rand) (float64, float64) {
	var outX, outY float64
	for _, e := range b {
		vx, vy := e.Variation.Apply(x, y, coefs, rng)
		outX += e.Weight * vx
		outY += e.Weight * vy
	}
	return outX, outY
}

// Transform is an affine map followed by a variation blend and an optional
// post affine map. Color and ColorSpeed drive palette color mixing.
// A Transform is not modified once a render has started.
type Transform struct {
	Coefs      Coefs
	Blend      Blend
	Post       *Coefs
	Color      float64
	ColorSpeed float64
}

// Apply maps (x, y) through the transform.
func (t *Transform) Apply(x, y float64, rng *rand.Rand) (float64, float64) {
	vx, vy := t.Coefs.Apply(x, y)
	outX, outY := t.Blend.Apply(vx, vy, t.Coefs, rng)
	if t.Post != nil && !t.Post.IsIdentity() {
		outX, outY = t.Post.Apply(outX, outY)
	}
	return outX, outY
}

// MixColor moves color toward target at the given speed:
// color·(1−speed) + target·speed.
func MixColor(color, target, speed float64) float64 {
	return color*(1-speed) + target*speed
}
