package opt

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/regfit/internal/network"
	"github.com/cwbudde/regfit/internal/problem"
)

// archipelagoProblem builds a tiny two-node problem whose simulation output
// is constant, so the cost landscape is flat and runs are fast.
func archipelagoProblem(t *testing.T, known [][]float64) *problem.Problem {
	t.Helper()
	factory, err := problem.NewFactory(problem.Observations{
		Data:  mat.NewDense(2, 2, []float64{1, 1, 1, 1}),
		Sigma: []float64{1, 1},
		Times: []float64{0, 1},
		Y0:    []float64{1, 1},
	}, func(_, _, _, _ []float64, _ []bool, _ int) *mat.Dense {
		return mat.NewDense(2, 2, []float64{1, 1, 0.5, 0.5})
	})
	if err != nil {
		t.Fatalf("NewFactory failed: %v", err)
	}

	rm := network.NewReactionMap([][]int{{0}, {0, 1}})
	dim := problem.Dimension(rm)
	lower, upper := problem.DefaultBounds(rm.NumNodes(), rm.EdgeCount())
	p, err := factory.Build(dim, lower, upper, rm, known)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return p
}

func testArgs() Args {
	return Args{
		Algorithm:      "MF",
		Islands:        2,
		Generations:    5,
		PopulationSize: 20,
		Seed:           1,
	}
}

func TestArchipelagoOneChampionPerIsland(t *testing.T) {
	p := archipelagoProblem(t, nil)

	champions, err := NewArchipelago(testArgs(), Unconnected).Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(champions) != 2 {
		t.Fatalf("Expected 2 champions, got %d", len(champions))
	}
	for i, c := range champions {
		if len(c.Position) != p.Dim {
			t.Errorf("Champion %d has %d parameters, expected %d", i, len(c.Position), p.Dim)
		}
		if math.IsInf(c.Cost, 1) || math.IsNaN(c.Cost) {
			t.Errorf("Champion %d has non-finite cost %f", i, c.Cost)
		}
	}
}

func TestArchipelagoReservesSeedIsland(t *testing.T) {
	seed := make([]float64, 7)
	p := archipelagoProblem(t, [][]float64{seed})

	champions, err := NewArchipelago(testArgs(), Unconnected).Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// 2 regular islands plus the seeded one.
	if len(champions) != 3 {
		t.Fatalf("Expected 3 champions with a seeded island, got %d", len(champions))
	}

	// The seed island's champion can never be worse than the best seed.
	seedCost := p.NewEvaluator().Cost(seed)
	if champions[2].Cost > seedCost {
		t.Errorf("Seed island champion cost %f worse than seed cost %f", champions[2].Cost, seedCost)
	}
}

func TestArchipelagoRingTopology(t *testing.T) {
	p := archipelagoProblem(t, nil)

	args := testArgs()
	args.Generations = 8
	champions, err := NewArchipelago(args, Ring).Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(champions) != 2 {
		t.Fatalf("Expected 2 champions, got %d", len(champions))
	}
}

func TestArchipelagoUnknownAlgorithmFailsBeforeRunning(t *testing.T) {
	p := archipelagoProblem(t, nil)

	args := testArgs()
	args.Algorithm = "nope"
	if _, err := NewArchipelago(args, Unconnected).Run(p); err == nil {
		t.Fatal("Expected error for unknown algorithm")
	}
}
