package data

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/regfit/internal/problem"
)

// BuildObservations combines one or more parsed data files into the
// observation set the cost model fits against. Nodes are ordered by sorted
// name; every dataset must cover the same nodes with one value per time
// point.
//
// Data is the element-wise mean across datasets. Sigma is the unbiased
// (N-1) standard deviation across datasets, averaged over time points, per
// node; with a single dataset no deviation exists and sigma is 1
// everywhere. Y0 is the mean state at the first time point.
func BuildObservations(datasets []map[string][]float64, times []float64) (problem.Observations, []string, error) {
	if len(datasets) == 0 {
		return problem.Observations{}, nil, fmt.Errorf("no datasets given")
	}
	if len(times) == 0 {
		return problem.Observations{}, nil, fmt.Errorf("no time points given")
	}

	names := make([]string, 0, len(datasets[0]))
	for name := range datasets[0] {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := len(times)
	n := len(names)
	matrices := make([]*mat.Dense, len(datasets))
	for d, dataset := range datasets {
		if len(dataset) != n {
			return problem.Observations{}, nil, fmt.Errorf(
				"dataset %d has %d nodes, expected %d", d, len(dataset), n)
		}
		matrix := mat.NewDense(rows, n, nil)
		for c, name := range names {
			series, ok := dataset[name]
			if !ok {
				return problem.Observations{}, nil, fmt.Errorf(
					"dataset %d is missing node %s", d, name)
			}
			if len(series) != rows {
				return problem.Observations{}, nil, fmt.Errorf(
					"dataset %d node %s has %d values, expected %d",
					d, name, len(series), rows)
			}
			for r, value := range series {
				matrix.Set(r, c, value)
			}
		}
		matrices[d] = matrix
	}

	mean := mat.NewDense(rows, n, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < n; c++ {
			sum := 0.0
			for _, matrix := range matrices {
				sum += matrix.At(r, c)
			}
			mean.Set(r, c, sum/float64(len(matrices)))
		}
	}

	sigma := make([]float64, n)
	if len(matrices) > 1 {
		for c := 0; c < n; c++ {
			total := 0.0
			for r := 0; r < rows; r++ {
				variance := 0.0
				for _, matrix := range matrices {
					diff := matrix.At(r, c) - mean.At(r, c)
					variance += diff * diff
				}
				total += math.Sqrt(variance / float64(len(matrices)-1))
			}
			sigma[c] = total / float64(rows)
		}
	} else {
		for c := range sigma {
			sigma[c] = 1
		}
	}

	y0 := make([]float64, n)
	for c := 0; c < n; c++ {
		y0[c] = mean.At(0, c)
	}

	obs := problem.Observations{
		Data:  mean,
		Sigma: sigma,
		Times: append([]float64{}, times...),
		Y0:    y0,
	}
	return obs, names, nil
}
