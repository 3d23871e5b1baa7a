// Package sim provides the ODE simulation the cost model runs against.
//
// The system follows sigmoidal kinetics: for node i,
//
//	dy_i/dt = vmax_i / (1 + exp(-sum_j w_ij*y_j)) - lambda_i*y_i
//
// where lambda and vmax come from the first 2n entries of the decision
// vector and the weight matrix w from scattering the remaining entries
// through the edge mask.
package sim

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Func simulates the system from y0 over the time grid, using the decision
// vector x and the dense edge vector/mask pair of length n*n. It returns a
// len(times) x n matrix whose first row is y0. The cost model treats this as
// an external collaborator and only ever calls it through this signature.
type Func func(y0, times, x, edges []float64, mask []bool, n int) *mat.Dense

// maxStep bounds the RK4 step size between two grid points.
const maxStep = 0.5

// Simulate is the default Func: classic fixed-step RK4 over the time grid,
// sub-stepping so no step exceeds maxStep.
func Simulate(y0, times, x, edges []float64, mask []bool, n int) *mat.Dense {
	weights := scatter(x, edges, mask, n)
	lambda := x[:n]
	vmax := x[n : 2*n]

	out := mat.NewDense(len(times), n, nil)
	y := append([]float64{}, y0...)
	out.SetRow(0, y)

	scratch := newDerivScratch(n)
	for k := 1; k < len(times); k++ {
		span := times[k] - times[k-1]
		steps := int(math.Ceil(span / maxStep))
		if steps < 1 {
			steps = 1
		}
		h := span / float64(steps)
		for s := 0; s < steps; s++ {
			rk4Step(y, h, lambda, vmax, weights, scratch)
		}
		out.SetRow(k, y)
	}
	return out
}

// scatter expands the edge slice of the decision vector into a dense n*n
// weight matrix, row i holding the incoming weights of node i. Only the mask
// decides placement; the edge vector's -1 markers are layout metadata.
func scatter(x, _ []float64, mask []bool, n int) []float64 {
	weights := make([]float64, n*n)
	ki := 2 * n
	for i, present := range mask {
		if present {
			weights[i] = x[ki]
			ki++
		}
	}
	return weights
}

type derivScratch struct {
	k1, k2, k3, k4, tmp []float64
}

func newDerivScratch(n int) *derivScratch {
	return &derivScratch{
		k1:  make([]float64, n),
		k2:  make([]float64, n),
		k3:  make([]float64, n),
		k4:  make([]float64, n),
		tmp: make([]float64, n),
	}
}

func rk4Step(y []float64, h float64, lambda, vmax, weights []float64, s *derivScratch) {
	n := len(y)

	deriv(y, lambda, vmax, weights, s.k1)
	for i := 0; i < n; i++ {
		s.tmp[i] = y[i] + 0.5*h*s.k1[i]
	}
	deriv(s.tmp, lambda, vmax, weights, s.k2)
	for i := 0; i < n; i++ {
		s.tmp[i] = y[i] + 0.5*h*s.k2[i]
	}
	deriv(s.tmp, lambda, vmax, weights, s.k3)
	for i := 0; i < n; i++ {
		s.tmp[i] = y[i] + h*s.k3[i]
	}
	deriv(s.tmp, lambda, vmax, weights, s.k4)

	for i := 0; i < n; i++ {
		y[i] += h / 6 * (s.k1[i] + 2*s.k2[i] + 2*s.k3[i] + s.k4[i])
	}
}

func deriv(y, lambda, vmax, weights []float64, out []float64) {
	n := len(y)
	for i := 0; i < n; i++ {
		var act float64
		row := weights[i*n : (i+1)*n]
		for j, w := range row {
			act += w * y[j]
		}
		out[i] = vmax[i]/(1+math.Exp(-act)) - lambda[i]*y[i]
	}
}
