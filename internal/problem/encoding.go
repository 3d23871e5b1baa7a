package problem

import "github.com/cwbudde/regfit/internal/network"

// Decision vector layout for n nodes and e edges:
//
//	[0, n)       decay rates (lambda)
//	[n, 2n)      production maxima (vmax)
//	[2n, 2n+e)   edge weights, in node-then-edge order
//
// Every consumer of a decision vector (cost evaluation, pruning, result
// serialization) relies on this layout.

// Dimension returns the decision-vector length for a reaction map.
func Dimension(rm *network.ReactionMap) int {
	return 2*rm.NumNodes() + rm.EdgeCount()
}

// EdgeVector flattens a reaction map into the dense n*n edge vector and its
// placement mask. Present edges are marked -1, absent ones 0; the mask is
// true exactly where the value is negative. Entry i*n+j covers the edge
// from regulator j onto node i.
func EdgeVector(rm *network.ReactionMap) ([]float64, []bool) {
	n := rm.NumNodes()
	edges := make([]float64, n*n)
	mask := make([]bool, n*n)
	for i := 0; i < n; i++ {
		for _, regulator := range rm.Set(i) {
			edges[i*n+regulator] = -1
			mask[i*n+regulator] = true
		}
	}
	return edges, mask
}

const (
	defaultRateUpper   = 20.0
	defaultWeightBound = 20.0
)

// DefaultBounds returns the default per-index bounds: [0, 20] for the decay
// and production blocks, [-20, 20] for the edge-weight block.
func DefaultBounds(numNodes, numEdges int) (lower, upper []float64) {
	dim := 2*numNodes + numEdges
	lower = make([]float64, dim)
	upper = make([]float64, dim)
	for i := 0; i < dim; i++ {
		upper[i] = defaultRateUpper
		if i >= 2*numNodes {
			lower[i] = -defaultWeightBound
		}
	}
	return lower, upper
}
