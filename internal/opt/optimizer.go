package opt

import "runtime"

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Run executes the optimization
	// eval: objective function to minimize
	// lower, upper: per-index parameter bounds
	// dim: dimensionality of parameter space
	// Returns: best parameters and best cost
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}

// Champion is the best individual found by one island.
type Champion struct {
	Position []float64
	Cost     float64
}

// Args is the immutable optimization configuration supplied once per run.
type Args struct {
	// Algorithm is the registry label of the metaheuristic to use.
	Algorithm string
	// Params is a free-form parameter map; keys the algorithm does not
	// declare are dropped.
	Params map[string]any
	// Islands is the number of parallel populations. A value below 1
	// means one island per available CPU.
	Islands int
	// Generations is the per-island generation budget.
	Generations int
	// PopulationSize is the number of individuals per island.
	PopulationSize int
	// Seed is the base random seed; island i uses Seed+i.
	Seed int64
}

// NumIslands resolves the island count, mapping values below 1 to the
// available hardware parallelism.
func (a Args) NumIslands() int {
	if a.Islands < 1 {
		return runtime.NumCPU()
	}
	return a.Islands
}
