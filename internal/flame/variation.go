package flame

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Kind identifies a variation function.
type Kind int

const (
	Linear Kind = iota
	Julia
	Popcorn
	PDJ
)

var kindNames = map[Kind]string{
	Linear:  "linear",
	Julia:   "julia",
	Popcorn: "popcorn",
	PDJ:     "pdj",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a variation name (case-insensitive).
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown variation %q", name)
}

// PDJParams are the four parameters of the pdj variation. They are independent
// of the owning transform's affine coefficients.
type PDJParams struct {
	A, B, C, D float64
}

// Variation is a nonlinear function applied to the affine-transformed point.
// Params is only consulted by PDJ.
type Variation struct {
	Kind   Kind
	Params PDJParams
}

// NewPDJ builds a pdj variation with the given parameters.
func NewPDJ(p PDJParams) Variation {
	return Variation{Kind: PDJ, Params: p}
}

// Apply evaluates the variation at (x, y). coefs are the owning transform's
// affine coefficients (used by popcorn). rng supplies julia's per-call coin flip.
func (v Variation) Apply(x, y float64, coefs Coefs, rng *rand.Rand) (float64, float64) {
	switch v.Kind {
	case Linear:
		return x, y
	case Julia:
		omega := 0.0
		if rng.Float64() <= 0.5 {
			omega = math.Pi
		}
		return JuliaOmega(x, y, omega)
	case Popcorn:
		return x + coefs.C*math.Sin(math.Tan(3*y)), y + coefs.F*math.Sin(math.Tan(3*x))
	case PDJ:
		p := v.Params
		return math.Sin(p.A*y) - math.Cos(p.B*x), math.Sin(p.C*x) - math.Cos(p.D*y)
	default:
		return x, y
	}
}

// JuliaOmega evaluates julia with a fixed ω. Note θ = atan2(x, y), with the
// arguments in that order.
func JuliaOmega(x, y, omega float64) (float64, float64) {
	r := math.Sqrt(x*x + y*y)
	theta := math.Atan2(x, y)
	sqrtR := math.Sqrt(r)
	t := theta/2 + omega
	return sqrtR * math.Cos(t), sqrtR * math.Sin(t)
}
