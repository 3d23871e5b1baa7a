package infer

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/regfit/internal/network"
	"github.com/cwbudde/regfit/internal/opt"
	"github.com/cwbudde/regfit/internal/problem"
)

// observationsFor builds a flat two-time-point observation set over n
// nodes, enough for solution/ranking/pruning tests.
func observationsFor(n int) problem.Observations {
	data := make([]float64, 2*n)
	sigma := make([]float64, n)
	y0 := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i], data[n+i] = 1, 1
		sigma[i] = 1
		y0[i] = 1
	}
	return problem.Observations{
		Data:  mat.NewDense(2, n, data),
		Sigma: sigma,
		Times: []float64{0, 1},
		Y0:    y0,
	}
}

// zeroSim is a constant simulation; the exact costs do not matter here.
func zeroSim(_, _, _, _ []float64, _ []bool, n int) *mat.Dense {
	return mat.NewDense(2, n, nil)
}

func buildProblem(t *testing.T, rm *network.ReactionMap, known [][]float64) *problem.Problem {
	t.Helper()
	factory, err := problem.NewFactory(observationsFor(rm.NumNodes()), zeroSim)
	if err != nil {
		t.Fatalf("NewFactory failed: %v", err)
	}

	dim := problem.Dimension(rm)
	lower, upper := problem.DefaultBounds(rm.NumNodes(), rm.EdgeCount())
	p, err := factory.Build(dim, lower, upper, rm, known)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return p
}

func TestSolutionMatrix(t *testing.T) {
	// 3 nodes, edges {1:{0,2}, 2:{2}}: vector is 3 lambdas, 3 vmax and
	// 3 edge weights scattered into the dense 3x3 block.
	rm := network.NewReactionMap([][]int{{}, {0, 2}, {2}})
	p := buildProblem(t, rm, nil)

	champion := opt.Champion{
		Position: []float64{1, 1.5, 0, 2, 2.5, 5, 1, 1, 1},
		Cost:     0.99,
	}
	matrix := NewSolution(champion, p).Matrix()

	expected := [][]float64{
		{1.0, 2.0, 0.0, 0.0, 0.0},
		{1.5, 2.5, 1.0, 0.0, 1.0},
		{0.0, 5.0, 0.0, 0.0, 1.0},
	}
	rows, cols := matrix.Dims()
	if rows != 3 || cols != 5 {
		t.Fatalf("Expected 3x5 matrix, got %dx%d", rows, cols)
	}
	for i := range expected {
		for j := range expected[i] {
			if matrix.At(i, j) != expected[i][j] {
				t.Errorf("[%d,%d]: expected %f, got %f", i, j, expected[i][j], matrix.At(i, j))
			}
		}
	}
}

func TestNewSolutionKeepsChampionCost(t *testing.T) {
	rm := network.NewReactionMap([][]int{{0}, {}})
	p := buildProblem(t, rm, nil)

	s := NewSolution(opt.Champion{Position: make([]float64, p.Dim), Cost: 3.5}, p)
	if s.Cost != 3.5 {
		t.Errorf("Expected champion cost 3.5, got %f", s.Cost)
	}
	if s.NumVariables() != p.Dim {
		t.Errorf("Expected %d variables, got %d", p.Dim, s.NumVariables())
	}
}

func TestRankOrdersByAscendingCost(t *testing.T) {
	rm := network.NewReactionMap([][]int{{0}, {}})
	p := buildProblem(t, rm, nil)

	champions := []opt.Champion{
		{Position: make([]float64, p.Dim), Cost: 5},
		{Position: make([]float64, p.Dim), Cost: 1},
		{Position: make([]float64, p.Dim), Cost: 3},
	}
	ranked := Rank(champions, p)

	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Cost > ranked[i].Cost {
			t.Errorf("Ranking invariant violated at %d: %f > %f", i, ranked[i-1].Cost, ranked[i].Cost)
		}
	}
	if ranked[0].Cost != 1 {
		t.Errorf("Expected best cost 1, got %f", ranked[0].Cost)
	}
}

func TestRankIsStableForEqualCosts(t *testing.T) {
	rm := network.NewReactionMap([][]int{{0}, {}})
	p := buildProblem(t, rm, nil)

	first := make([]float64, p.Dim)
	first[0] = 7
	second := make([]float64, p.Dim)
	second[0] = 9
	ranked := Rank([]opt.Champion{
		{Position: first, Cost: 2},
		{Position: second, Cost: 2},
	}, p)

	if ranked[0].Vector[0] != 7 {
		t.Errorf("Equal costs must keep island order, got vector starting with %f", ranked[0].Vector[0])
	}
}

func TestRankerForwardsFullListAndReturnsBest(t *testing.T) {
	rm := network.NewReactionMap([][]int{{0}, {}})
	p := buildProblem(t, rm, nil)

	handler := &recordingHandler{}
	ranker := NewRanker(handler)

	best, err := ranker.Best([]opt.Champion{
		{Position: make([]float64, p.Dim), Cost: 4},
		{Position: make([]float64, p.Dim), Cost: 2},
	}, p)
	if err != nil {
		t.Fatalf("Best failed: %v", err)
	}
	if best.Cost != 2 {
		t.Errorf("Expected best cost 2, got %f", best.Cost)
	}
	if len(handler.calls) != 1 {
		t.Fatalf("Expected 1 handler call, got %d", len(handler.calls))
	}
	if got := len(handler.calls[0].solutions); got != 2 {
		t.Errorf("Expected the full ranked list of 2 solutions, got %d", got)
	}
}

func TestRankerRejectsEmptyChampionList(t *testing.T) {
	rm := network.NewReactionMap([][]int{{0}, {}})
	p := buildProblem(t, rm, nil)

	if _, err := NewRanker(&recordingHandler{}).Best(nil, p); err == nil {
		t.Fatal("Expected error for empty champion list")
	}
}

// recordingHandler captures every HandleSolutions call.
type recordingHandler struct {
	calls []handlerCall
	fail  bool
}

type handlerCall struct {
	solutions []*Solution
	name      string
}

func (h *recordingHandler) HandleSolutions(solutions []*Solution, name string) error {
	h.calls = append(h.calls, handlerCall{solutions: solutions, name: name})
	if h.fail {
		return errFail
	}
	return nil
}

var errFail = &failError{}

type failError struct{}

func (*failError) Error() string { return "handler failed" }
