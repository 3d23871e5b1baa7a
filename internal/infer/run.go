package infer

import (
	"log/slog"
	"sort"

	"github.com/cwbudde/regfit/internal/opt"
	"github.com/cwbudde/regfit/internal/problem"
)

// BestSolutionsName is the distinguished name the final cross-round persist
// request is made under.
const BestSolutionsName = "best_solutions"

// Run composes the archipelago, the ranker and the pruner into the
// multi-round search.
type Run struct {
	args     opt.Args
	topology opt.Topology
	ranker   *Ranker
	pruner   *Pruner
	handler  SolutionsHandler
}

// NewRun builds a Run. The topology applies to every optimization within
// the run; pass opt.Ring only for the top-level search.
func NewRun(factory *problem.Factory, handler SolutionsHandler, args opt.Args, topology opt.Topology) *Run {
	return &Run{
		args:     args,
		topology: topology,
		ranker:   NewRanker(handler),
		pruner:   NewPruner(factory),
		handler:  handler,
	}
}

// Solve runs pruning rounds starting from the given problem and returns
// every round's best solution, in round order. A failing round terminates
// the loop early: the rounds completed so far are always returned, and the
// best solutions found are persisted before returning.
func (r *Run) Solve(start *problem.Problem) []*Solution {
	var solutions []*Solution

	prob := start
	for round := 1; ; round++ {
		champions, err := opt.NewArchipelago(r.args, r.topology).Run(prob)
		if err != nil {
			slog.Error("Optimization failed, returning solutions found so far",
				"round", round, "error", err)
			break
		}

		best, err := r.ranker.Best(champions, prob)
		if err != nil {
			slog.Error("Ranking failed, returning solutions found so far",
				"round", round, "error", err)
			break
		}
		solutions = append(solutions, best)
		slog.Info("New solution found",
			"round", round, "cost", best.Cost,
			"edges", best.Reactions.EdgeCount(), "variables", best.NumVariables())

		next, ok, err := r.pruner.Next(best)
		if err != nil {
			slog.Error("Pruning failed, returning solutions found so far",
				"round", round, "error", err)
			break
		}
		if !ok {
			slog.Info("No edges left to prune, search complete", "rounds", round)
			break
		}
		prob = next
	}

	r.persistBest(solutions)
	return solutions
}

// persistBest hands the cross-round solutions, best first, to the handler
// under the distinguished name.
func (r *Run) persistBest(solutions []*Solution) {
	if len(solutions) == 0 {
		return
	}
	ranked := append([]*Solution{}, solutions...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Cost < ranked[j].Cost
	})
	if err := r.handler.HandleSolutions(ranked, BestSolutionsName); err != nil {
		slog.Error("Persisting best solutions failed", "error", err)
	}
}
