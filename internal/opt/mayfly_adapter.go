package opt

import (
	"log/slog"
	"math/rand"

	"github.com/cwbudde/mayfly"
	"gonum.org/v1/gonum/floats"
)

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter
func NewMayfly(maxIters, popSize int, seed int64) Optimizer {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the Mayfly optimization using the external library.
// The library only supports scalar bounds, so the search runs over the
// widest range and every candidate is clamped to the per-index bounds
// before evaluation.
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	config := mayfly.NewDefaultConfig()

	clamped := make([]float64, dim)
	clampedEval := func(x []float64) float64 {
		for i, v := range x {
			clamped[i] = clamp(v, lower[i], upper[i])
		}
		return eval(clamped)
	}

	config.ObjectiveFunc = clampedEval
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = floats.Min(lower)
	config.UpperBound = floats.Max(upper)

	// Set random seed for reproducibility
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		// Fallback to zero vector if optimization fails
		slog.Warn("Mayfly optimization failed, falling back to zero vector", "error", err)
		zero := make([]float64, dim)
		return zero, eval(zero)
	}

	best := make([]float64, dim)
	for i, v := range result.GlobalBest.Position {
		best[i] = clamp(v, lower[i], upper[i])
	}
	return best, result.GlobalBest.Cost
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
