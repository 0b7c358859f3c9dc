// Package flame implements the building blocks of a fractal flame iterated
// function system: affine coefficients, nonlinear variations, variation blends,
// transforms and probability-weighted transform selection.
package flame

// Coefs holds the six coefficients of the affine map
// (x, y) -> (a·x + b·y + c, d·x + e·y + f).
type Coefs struct {
	A, B, C float64
	D, E, F float64
}

// Identity is the affine map that leaves points unchanged.
var Identity = Coefs{A: 1, E: 1}

// Apply maps (x, y) through the affine coefficients.
func (c Coefs) Apply(x, y float64) (float64, float64) {
	return x*c.A + y*c.B + c.C, x*c.D + y*c.E + c.F
}

// IsIdentity reports whether c is the identity map.
func (c Coefs) IsIdentity() bool {
	return c == Identity
}
