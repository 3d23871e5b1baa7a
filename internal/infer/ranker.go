package infer

import (
	"fmt"
	"sort"

	"github.com/cwbudde/regfit/internal/opt"
	"github.com/cwbudde/regfit/internal/problem"
)

// SolutionsHandler is the external boundary that persists solutions. The
// run hands it every round's full ranked list with an empty name, and once
// more at the very end under the distinguished "best_solutions" name.
type SolutionsHandler interface {
	HandleSolutions(solutions []*Solution, name string) error
}

// Rank wraps every champion into a Solution and orders them by ascending
// cost. The sort is stable, so equal-cost champions keep island order.
func Rank(champions []opt.Champion, p *problem.Problem) []*Solution {
	solutions := make([]*Solution, len(champions))
	for i, champion := range champions {
		solutions[i] = NewSolution(champion, p)
	}
	sort.SliceStable(solutions, func(i, j int) bool {
		return solutions[i].Cost < solutions[j].Cost
	})
	return solutions
}

// Ranker forwards each round's full ranked list to the handler and returns
// the best solution to the caller.
type Ranker struct {
	handler SolutionsHandler
}

// NewRanker creates a Ranker over the given handler.
func NewRanker(handler SolutionsHandler) *Ranker {
	return &Ranker{handler: handler}
}

// Best ranks the champions, hands the whole list to the handler and returns
// the lowest-cost solution.
func (r *Ranker) Best(champions []opt.Champion, p *problem.Problem) (*Solution, error) {
	if len(champions) == 0 {
		return nil, fmt.Errorf("no champions to rank")
	}
	ranked := Rank(champions, p)
	if err := r.handler.HandleSolutions(ranked, ""); err != nil {
		return nil, fmt.Errorf("handling ranked solutions: %w", err)
	}
	return ranked[0], nil
}
