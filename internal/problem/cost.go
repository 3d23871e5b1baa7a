package problem

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Evaluator computes the scalar cost of a decision vector. It owns mutable
// scratch buffers, so a single Evaluator must never be shared between
// concurrently-running islands; each island constructs its own via
// NewEvaluator.
type Evaluator struct {
	p      *Problem
	sigma2 []float64
	col    []float64
	xbuf   []float64
}

// NewEvaluator returns a fresh evaluator with private scratch state.
func (p *Problem) NewEvaluator() *Evaluator {
	rows, n := p.obs.Data.Dims()
	sigma2 := make([]float64, n)
	for i, s := range p.obs.Sigma {
		sigma2[i] = s * s
	}
	return &Evaluator{
		p:      p,
		sigma2: sigma2,
		col:    make([]float64, rows),
		xbuf:   make([]float64, p.Dim),
	}
}

// Cost simulates the system under x and returns the weighted sum of squared
// residuals against the observations, plus the perturbation term when the
// problem carries one. Non-finite simulation output yields +Inf rather than
// NaN, so a diverged vector always ranks last.
func (e *Evaluator) Cost(x []float64) float64 {
	p := e.p
	results := p.simulate(p.obs.Y0, p.obs.Times, x, p.Edges, p.Mask, len(p.obs.Y0))
	cost := e.residual(results)

	if p.pert != nil {
		cost += p.pert.Weight * e.perturbationCost(x)
	}
	if math.IsNaN(cost) {
		return math.Inf(1)
	}
	return cost
}

// residual normalizes each simulated column by its maximum and accumulates
// sum(((data - sim/colmax)^2) / sigma^2). A column whose maximum is exactly
// zero is compared unnormalized (the divisor falls back to 1).
func (e *Evaluator) residual(results *mat.Dense) float64 {
	rows, cols := results.Dims()
	data := e.p.obs.Data

	var cost float64
	for j := 0; j < cols; j++ {
		mat.Col(e.col, j, results)
		colMax := e.col[0]
		for _, v := range e.col[1:] {
			if v > colMax {
				colMax = v
			}
		}
		if colMax == 0 {
			colMax = 1
		}
		for i := 0; i < rows; i++ {
			diff := data.At(i, j) - e.col[i]/colMax
			cost += diff * diff / e.sigma2[j]
		}
	}
	return cost
}

// perturbationCost re-simulates the knockout scenario for every node: node
// i's production maximum is forced to zero and the end state is compared
// against row i of the perturbation matrix.
func (e *Evaluator) perturbationCost(x []float64) float64 {
	p := e.p
	n := len(p.obs.Y0)
	last := len(p.obs.Times) - 1

	var cost float64
	for i := 0; i < n; i++ {
		copy(e.xbuf, x)
		e.xbuf[n+i] = 0
		results := p.simulate(p.obs.Y0, p.obs.Times, e.xbuf, p.Edges, p.Mask, n)
		for j := 0; j < n; j++ {
			diff := p.pert.Data.At(i, j) - results.At(last, j)
			cost += diff * diff
		}
	}
	return cost
}
