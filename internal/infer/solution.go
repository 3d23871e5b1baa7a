// Package infer drives the multi-round model-reduction search: optimize the
// current network, keep the best solution, prune its weakest edge and repeat
// until no edges remain.
package infer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/regfit/internal/network"
	"github.com/cwbudde/regfit/internal/opt"
	"github.com/cwbudde/regfit/internal/problem"
)

// Solution wraps one island champion together with the round's reaction map
// and placement mask. It is valid for the round that produced it; the next
// round's problem is derived from it.
type Solution struct {
	Vector    []float64
	Cost      float64
	Reactions *network.ReactionMap
	Edges     []float64
	Mask      []bool
}

// NewSolution builds a Solution from a champion and the problem it solved.
// The cost is the champion's fitness value, never recomputed.
func NewSolution(champion opt.Champion, p *problem.Problem) *Solution {
	return &Solution{
		Vector:    append([]float64{}, champion.Position...),
		Cost:      champion.Cost,
		Reactions: p.Reactions.Clone(),
		Edges:     append([]float64{}, p.Edges...),
		Mask:      append([]bool{}, p.Mask...),
	}
}

// NumVariables returns the decision-vector length.
func (s *Solution) NumVariables() int {
	return len(s.Vector)
}

// Matrix lays the solution out one row per node: lambda, vmax, then the
// node's row of the dense edge-weight matrix (absent edges as zero).
func (s *Solution) Matrix() *mat.Dense {
	n := s.Reactions.NumNodes()

	scattered := make([]float64, n*n)
	ki := 2 * n
	for i, present := range s.Mask {
		if present {
			scattered[i] = s.Vector[ki]
			ki++
		}
	}

	out := mat.NewDense(n, 2+n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, s.Vector[i])
		out.Set(i, 1, s.Vector[n+i])
		for j := 0; j < n; j++ {
			out.Set(i, 2+j, scattered[i*n+j])
		}
	}
	return out
}

func (s *Solution) String() string {
	return fmt.Sprintf("cost=%g variables=%d edges=%d",
		s.Cost, len(s.Vector), s.Reactions.EdgeCount())
}
