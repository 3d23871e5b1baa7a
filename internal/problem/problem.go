package problem

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/regfit/internal/network"
	"github.com/cwbudde/regfit/internal/sim"
)

// ConfigError reports malformed construction inputs. Shape mismatches are
// caught here, at build time, never during cost evaluation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Field + " " + e.Reason
}

// Observations bundles the measured data the cost model fits against.
type Observations struct {
	// Data holds one row per time point and one column per node, already
	// normalized by column maximum.
	Data *mat.Dense
	// Sigma is the per-node standard deviation of the measurements.
	Sigma []float64
	// Times is the simulation grid; Times[0] is the time of Y0.
	Times []float64
	// Y0 is the initial state, typically the data values at the first
	// time point.
	Y0 []float64
}

func (o *Observations) validate() error {
	if o.Data == nil {
		return &ConfigError{Field: "Data", Reason: "cannot be nil"}
	}
	rows, cols := o.Data.Dims()
	if len(o.Times) != rows {
		return &ConfigError{Field: "Times", Reason: fmt.Sprintf(
			"length %d does not match %d data rows", len(o.Times), rows)}
	}
	if len(o.Sigma) != cols {
		return &ConfigError{Field: "Sigma", Reason: fmt.Sprintf(
			"length %d does not match %d data columns", len(o.Sigma), cols)}
	}
	if len(o.Y0) != cols {
		return &ConfigError{Field: "Y0", Reason: fmt.Sprintf(
			"length %d does not match %d data columns", len(o.Y0), cols)}
	}
	return nil
}

// Perturbations is the optional perturbation-consistency term: Data row i is
// the expected node state after knocking out node i, Weight scales the term's
// contribution to the total cost.
type Perturbations struct {
	Data   *mat.Dense
	Weight float64
}

// Factory builds Problem instances over a fixed observation set. One factory
// serves the whole run; each pruning round asks it for a new, smaller
// Problem.
type Factory struct {
	obs      Observations
	simulate sim.Func
	pert     *Perturbations
}

// NewFactory validates the observations and returns a factory using the
// given simulation function.
func NewFactory(obs Observations, simulate sim.Func) (*Factory, error) {
	if simulate == nil {
		return nil, &ConfigError{Field: "simulate", Reason: "cannot be nil"}
	}
	if err := obs.validate(); err != nil {
		return nil, err
	}
	return &Factory{obs: obs, simulate: simulate}, nil
}

// WithPerturbations enables the perturbation-consistency term. The data must
// be an n x n matrix (row per knocked-out node) and the weight in [0, 1].
func (f *Factory) WithPerturbations(p Perturbations) (*Factory, error) {
	_, n := f.obs.Data.Dims()
	rows, cols := p.Data.Dims()
	if rows != n || cols != n {
		return nil, &ConfigError{Field: "Perturbations.Data", Reason: fmt.Sprintf(
			"shape %dx%d does not match %d nodes", rows, cols, n)}
	}
	if p.Weight < 0 || p.Weight > 1 {
		return nil, &ConfigError{Field: "Perturbations.Weight", Reason: "must be in [0, 1]"}
	}
	clone := *f
	clone.pert = &p
	return &clone, nil
}

// Build constructs an immutable Problem for one pruning round. The bounds
// must match dim, and dim must equal the reaction map's vector dimension.
func (f *Factory) Build(dim int, lower, upper []float64, rm *network.ReactionMap, known [][]float64) (*Problem, error) {
	if len(lower) != dim || len(upper) != dim {
		return nil, &ConfigError{Field: "bounds", Reason: fmt.Sprintf(
			"lengths %d/%d do not match dimension %d", len(lower), len(upper), dim)}
	}
	if expected := Dimension(rm); expected != dim {
		return nil, &ConfigError{Field: "dim", Reason: fmt.Sprintf(
			"%d does not match reaction map dimension %d", dim, expected)}
	}
	_, n := f.obs.Data.Dims()
	if rm.NumNodes() != n {
		return nil, &ConfigError{Field: "reactions", Reason: fmt.Sprintf(
			"%d nodes do not match %d data columns", rm.NumNodes(), n)}
	}
	for i, seed := range known {
		if len(seed) != dim {
			return nil, &ConfigError{Field: "known", Reason: fmt.Sprintf(
				"seed %d has length %d, expected %d", i, len(seed), dim)}
		}
	}

	edges, mask := EdgeVector(rm)
	return &Problem{
		Dim:       dim,
		Lower:     append([]float64{}, lower...),
		Upper:     append([]float64{}, upper...),
		Reactions: rm.Clone(),
		Edges:     edges,
		Mask:      mask,
		Known:     cloneVectors(known),
		obs:       f.obs,
		simulate:  f.simulate,
		pert:      f.pert,
	}, nil
}

// Problem is the immutable per-round bundle of dimension, bounds, encoding
// and cost parameters. It is shared read-only across islands; each island
// obtains its own Evaluator for the mutable scratch state.
type Problem struct {
	Dim       int
	Lower     []float64
	Upper     []float64
	Reactions *network.ReactionMap
	Edges     []float64
	Mask      []bool
	Known     [][]float64

	obs      Observations
	simulate sim.Func
	pert     *Perturbations
}

// HasPerturbations reports whether the perturbation term is active.
func (p *Problem) HasPerturbations() bool {
	return p.pert != nil
}

func cloneVectors(vs [][]float64) [][]float64 {
	out := make([][]float64, len(vs))
	for i, v := range vs {
		out[i] = append([]float64{}, v...)
	}
	return out
}
