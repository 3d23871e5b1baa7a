package opt

import (
	"log/slog"
	"math"

	"github.com/sourcegraph/conc/pool"

	"github.com/cwbudde/regfit/internal/problem"
)

// Topology selects how islands exchange individuals during a run.
type Topology int

const (
	// Unconnected islands never exchange individuals. This is the
	// default for pruning rounds.
	Unconnected Topology = iota
	// Ring islands pass their champion to the next island between
	// migration epochs. Used for the final top-level run.
	Ring
)

// ringEpochs is the number of migration epochs a ring-connected run is
// split into.
const ringEpochs = 4

// Archipelago runs independent islands of the configured metaheuristic
// against a single Problem and returns each island's champion.
//
// The underlying library cannot inject individuals into a running
// population, so ring migration is emulated by splitting the generation
// budget into epochs: each epoch restarts the search and an island's
// incumbent champion is exchanged with its ring neighbour between epochs.
// An island's champion can never regress across epochs.
type Archipelago struct {
	args     Args
	topology Topology
}

// NewArchipelago creates an archipelago with the given configuration.
func NewArchipelago(args Args, topology Topology) *Archipelago {
	return &Archipelago{args: args, topology: topology}
}

// Run evolves all islands to their full generation budget and blocks until
// the last one finishes. When the problem carries known solutions, one
// extra island is reserved for them: its champion starts from the best
// seed, so a carried-over solution is never lost.
func (a *Archipelago) Run(prob *problem.Problem) ([]Champion, error) {
	islands := a.args.NumIslands()
	total := islands
	if len(prob.Known) > 0 {
		total++
	}

	epochs := 1
	if a.topology == Ring {
		epochs = ringEpochs
		if epochs > a.args.Generations {
			epochs = a.args.Generations
		}
		if epochs < 1 {
			epochs = 1
		}
	}

	// Build every optimizer up front so a bad algorithm label fails
	// before any island starts.
	optimizers := make([][]Optimizer, total)
	for i := range optimizers {
		optimizers[i] = make([]Optimizer, epochs)
		for e := range optimizers[i] {
			seed := a.args.Seed + int64(i*epochs+e)
			optimizer, err := NewOptimizer(
				a.args.Algorithm, a.args.Params,
				a.epochGenerations(e, epochs), a.args.PopulationSize, seed,
			)
			if err != nil {
				return nil, err
			}
			optimizers[i][e] = optimizer
		}
	}

	incumbents := make([]Champion, total)
	for i := range incumbents {
		incumbents[i] = Champion{Cost: math.Inf(1)}
	}

	// One evaluator per island: the cost model's scratch buffers are
	// mutable and must not be shared across concurrent islands.
	evaluators := make([]*problem.Evaluator, total)
	for i := range evaluators {
		evaluators[i] = prob.NewEvaluator()
	}

	if len(prob.Known) > 0 {
		incumbents[total-1] = bestSeed(prob, evaluators[total-1])
		slog.Debug("Seeded island from known solutions",
			"seeds", len(prob.Known), "cost", incumbents[total-1].Cost)
	}

	for e := 0; e < epochs; e++ {
		workers := pool.New().WithMaxGoroutines(total)
		for i := 0; i < total; i++ {
			workers.Go(func() {
				pos, cost := optimizers[i][e].Run(
					evaluators[i].Cost, prob.Lower, prob.Upper, prob.Dim,
				)
				if cost < incumbents[i].Cost {
					incumbents[i] = Champion{Position: pos, Cost: cost}
				}
			})
		}
		// Barrier: no champion is read before every island finished
		// its epoch.
		workers.Wait()

		if a.topology == Ring && e < epochs-1 {
			migrate(incumbents)
		}
	}

	champions := make([]Champion, total)
	for i, inc := range incumbents {
		champions[i] = Champion{
			Position: append([]float64{}, inc.Position...),
			Cost:     inc.Cost,
		}
	}
	return champions, nil
}

// epochGenerations splits the generation budget across epochs, giving the
// remainder to the last one.
func (a *Archipelago) epochGenerations(epoch, epochs int) int {
	chunk := a.args.Generations / epochs
	if epoch == epochs-1 {
		chunk += a.args.Generations % epochs
	}
	return chunk
}

// migrate passes each island's champion to its ring successor: island i
// adopts island i-1's champion when it is better than its own.
func migrate(incumbents []Champion) {
	snapshot := append([]Champion{}, incumbents...)
	total := len(incumbents)
	for i := 0; i < total; i++ {
		neighbour := snapshot[(i-1+total)%total]
		if neighbour.Cost < incumbents[i].Cost {
			incumbents[i] = neighbour
		}
	}
}

func bestSeed(prob *problem.Problem, evaluator *problem.Evaluator) Champion {
	best := Champion{Cost: math.Inf(1)}
	for _, seed := range prob.Known {
		if cost := evaluator.Cost(seed); cost < best.Cost {
			best = Champion{Position: append([]float64{}, seed...), Cost: cost}
		}
	}
	return best
}
