package main

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/regfit/internal/data"
	"github.com/cwbudde/regfit/internal/infer"
	"github.com/cwbudde/regfit/internal/network"
	"github.com/cwbudde/regfit/internal/opt"
	"github.com/cwbudde/regfit/internal/problem"
	"github.com/cwbudde/regfit/internal/sim"
	"github.com/cwbudde/regfit/internal/store"
)

var (
	networkPath string
	dataPaths   []string
	timePath    string
	pertPath    string
	outDir      string
	algorithm   string
	islands     int
	generations int
	popSize     int
	pertWeight  float64
	seed        int64
	topK        int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the inference over a network and expression data",
	Long: `Fits the ODE model to the given expression series, then prunes the
weakest interaction and refits until no interactions remain. Each round's
top solutions and the cross-round best are written as tab-separated files
into a fresh run directory under the output directory.`,
	RunE: runInference,
}

func init() {
	runCmd.Flags().StringVar(&networkPath, "network", "", "Network edge list with source/target headers (required)")
	runCmd.Flags().StringArrayVar(&dataPaths, "data", nil, "Expression data file, repeatable (required)")
	runCmd.Flags().StringVar(&timePath, "time", "", "Time sequence file (required)")
	runCmd.Flags().StringVar(&pertPath, "perturbations", "", "Optional perturbation matrix file")
	runCmd.Flags().StringVar(&outDir, "out", ".", "Output directory for result files")
	runCmd.Flags().StringVar(&algorithm, "algorithm", "MF", "Optimization algorithm label")
	runCmd.Flags().IntVar(&islands, "islands", 0, "Number of islands; below 1 means one per CPU")
	runCmd.Flags().IntVar(&generations, "generations", 100, "Generations per island")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Individuals per island")
	runCmd.Flags().Float64Var(&pertWeight, "pert-weight", 0.5, "Perturbation cost weight in [0, 1]")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().IntVar(&topK, "top", 3, "Solutions written per round")

	runCmd.MarkFlagRequired("network")
	runCmd.MarkFlagRequired("data")
	runCmd.MarkFlagRequired("time")
	rootCmd.AddCommand(runCmd)
}

func runInference(cmd *cobra.Command, args []string) error {
	slog.Info("Starting inference",
		"network", networkPath, "datasets", len(dataPaths),
		"algorithm", algorithm, "generations", generations)

	prob, names, factory, err := buildProblem()
	if err != nil {
		return err
	}

	csvStore, err := store.NewCSVStore(outDir, names, topK)
	if err != nil {
		return fmt.Errorf("failed to create results store: %w", err)
	}
	slog.Info("Writing results", "dir", csvStore.Dir())

	optArgs := opt.Args{
		Algorithm:      algorithm,
		Islands:        islands,
		Generations:    generations,
		PopulationSize: popSize,
		Seed:           seed,
	}

	start := time.Now()
	solutions := infer.NewRun(factory, csvStore, optArgs, opt.Ring).Solve(prob)
	elapsed := time.Since(start)

	if len(solutions) == 0 {
		return fmt.Errorf("no solutions found")
	}

	best := solutions[0]
	for _, solution := range solutions[1:] {
		if solution.Cost < best.Cost {
			best = solution
		}
	}
	slog.Info("Inference complete",
		"elapsed", elapsed,
		"rounds", len(solutions),
		"best_cost", best.Cost,
		"best_edges", best.Reactions.EdgeCount(),
	)

	fmt.Printf("Wrote %d solutions to %s (best cost %.4g with %d edges, %s)\n",
		len(solutions), csvStore.Dir(), best.Cost, best.Reactions.EdgeCount(), elapsed)

	return nil
}

// buildProblem parses the input files and assembles the initial
// full-network problem.
func buildProblem() (*problem.Problem, []string, *problem.Factory, error) {
	influences, err := data.ParseNetwork(networkPath)
	if err != nil {
		return nil, nil, nil, err
	}
	net := network.New(influences)
	rm := net.Reactions(true)
	slog.Info("Parsed network", "nodes", net.NumNodes(), "edges", rm.EdgeCount())

	times, err := data.ParseTimes(timePath)
	if err != nil {
		return nil, nil, nil, err
	}

	datasets := make([]map[string][]float64, 0, len(dataPaths))
	for _, path := range dataPaths {
		series, err := data.ParseSeries(path)
		if err != nil {
			return nil, nil, nil, err
		}
		datasets = append(datasets, series)
	}

	obs, names, err := data.BuildObservations(datasets, times)
	if err != nil {
		return nil, nil, nil, err
	}
	if !reflect.DeepEqual(names, net.Names()) {
		return nil, nil, nil, fmt.Errorf(
			"data nodes %v do not match network nodes %v", names, net.Names())
	}

	factory, err := problem.NewFactory(obs, sim.Simulate)
	if err != nil {
		return nil, nil, nil, err
	}

	if pertPath != "" {
		matrix, ok, err := data.ParsePerturbations(pertPath, net.NumNodes())
		if err != nil {
			return nil, nil, nil, err
		}
		if ok {
			factory, err = factory.WithPerturbations(problem.Perturbations{
				Data:   matrix,
				Weight: pertWeight,
			})
			if err != nil {
				return nil, nil, nil, err
			}
			slog.Info("Perturbation term enabled", "weight", pertWeight)
		} else {
			slog.Warn("Perturbation matrix has wrong shape, term disabled",
				"file", pertPath, "nodes", net.NumNodes())
		}
	}

	dim := problem.Dimension(rm)
	lower, upper := problem.DefaultBounds(net.NumNodes(), rm.EdgeCount())
	prob, err := factory.Build(dim, lower, upper, rm, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return prob, names, factory, nil
}
