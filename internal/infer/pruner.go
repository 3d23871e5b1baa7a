package infer

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/regfit/internal/network"
	"github.com/cwbudde/regfit/internal/problem"
)

// InvariantError reports that pruning could not locate the edge to remove
// even though the mask indicates edges are present. It carries the full
// diagnostic state; this is a programming error, not a recoverable
// condition.
type InvariantError struct {
	Index     int
	Reactions *network.ReactionMap
	Mask      []bool
	Vector    []float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf(
		"invariant violation: edge index %d not found in reaction map\nreactions:\n%smask: %v\nvector: %v",
		e.Index, e.Reactions, e.Mask, e.Vector)
}

// RemoveWeakestEdge removes the present edge whose weight has the smallest
// absolute value. Ties go to the first such edge in node-then-edge
// iteration order. It returns the decision vector without the removed slot
// and the reduced reaction map.
func RemoveWeakestEdge(s *Solution) ([]float64, *network.ReactionMap, error) {
	n := s.Reactions.NumNodes()
	weights := s.Vector[2*n:]

	minIndex := 0
	minAbs := math.Inf(1)
	for i, w := range weights {
		if abs := math.Abs(w); abs < minAbs {
			minAbs = abs
			minIndex = i
		}
	}

	// Walk the per-node regulator sets in node-then-edge order until the
	// set containing minIndex is reached.
	count := 0
	for node := 0; node < n; node++ {
		set := s.Reactions.Set(node)
		count += len(set)
		if count > minIndex {
			pos := minIndex - count + len(set)
			regulator := set[pos]
			slog.Info("Removed weakest edge",
				"node", node, "regulator", regulator, "weight", weights[minIndex])

			reduced := make([]float64, 0, len(s.Vector)-1)
			reduced = append(reduced, s.Vector[:2*n+minIndex]...)
			reduced = append(reduced, s.Vector[2*n+minIndex+1:]...)
			return reduced, s.Reactions.WithoutEdge(node, pos), nil
		}
	}

	return nil, nil, &InvariantError{
		Index:     minIndex,
		Reactions: s.Reactions,
		Mask:      s.Mask,
		Vector:    s.Vector,
	}
}

// Pruner rebuilds a smaller problem from each round's best solution.
type Pruner struct {
	factory *problem.Factory
}

// NewPruner creates a Pruner over the given problem factory.
func NewPruner(factory *problem.Factory) *Pruner {
	return &Pruner{factory: factory}
}

// Next removes the weakest edge of the best solution and builds the next
// round's problem, seeded with the reduced vector. It returns false when no
// edges remain after the removal: the search is over and no problem is
// built.
func (pr *Pruner) Next(best *Solution) (*problem.Problem, bool, error) {
	if best.Reactions.EdgeCount() == 0 {
		return nil, false, nil
	}

	reduced, rm, err := RemoveWeakestEdge(best)
	if err != nil {
		return nil, false, err
	}
	if rm.EdgeCount() == 0 {
		return nil, false, nil
	}

	dim := problem.Dimension(rm)
	lower, upper := problem.DefaultBounds(rm.NumNodes(), rm.EdgeCount())
	next, err := pr.factory.Build(dim, lower, upper, rm, [][]float64{reduced})
	if err != nil {
		return nil, false, fmt.Errorf("building reduced problem: %w", err)
	}
	return next, true, nil
}
