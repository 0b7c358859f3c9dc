package flame

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	// ErrNoChoices is returned when a weighted choice list is empty.
	ErrNoChoices = errors.New("no choices to select from")
	// ErrInvalidWeight is returned for negative or non-finite weights, or when
	// no weight is positive.
	ErrInvalidWeight = errors.New("invalid choice weight")
)

// Choice pairs a selection weight with a value.
type Choice[T any] struct {
	Weight float64
	Value  T
}

// Chooser performs probability-weighted selection over a validated list.
// Entry i is selected with probability weight_i / Σweight.
type Chooser[T any] struct {
	choices []Choice[T]
	sum     float64
}

// NewChooser validates choices and precomputes the weight sum.
func NewChooser[T any](choices []Choice[T]) (*Chooser[T], error) {
	if len(choices) == 0 {
		return nil, ErrNoChoices
	}
	sum := 0.0
	for i, c := range choices {
		if c.Weight < 0 || math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) {
			return nil, fmt.Errorf("%w: entry %d has weight %v", ErrInvalidWeight, i, c.Weight)
		}
		sum += c.Weight
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: weights sum to %v", ErrInvalidWeight, sum)
	}
	return &Chooser[T]{choices: choices, sum: sum}, nil
}

// Pick selects an entry using u drawn uniformly from [0, 1).
// If rounding exhausts the walk, the last entry is returned.
func (c *Chooser[T]) Pick(u float64) (int, T) {
	choice := u * c.sum
	for i, ch := range c.choices {
		if choice < ch.Weight {
			return i, ch.Value
		}
		choice -= ch.Weight
	}
	last := len(c.choices) - 1
	return last, c.choices[last].Value
}

// Choose validates choices and picks one entry using rng.
func Choose[T any](rng *rand.Rand, choices []Choice[T]) (int, T, error) {
	c, err := NewChooser(choices)
	if err != nil {
		var zero T
		return 0, zero, err
	}
	i, v := c.Pick(rng.Float64())
	return i, v, nil
}
