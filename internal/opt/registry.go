package opt

import (
	"fmt"
	"log/slog"
	"sort"
)

// AlgorithmSpec describes one supported metaheuristic: its registry label
// and the parameter names its adapter accepts. Parameters outside that set
// are dropped at configuration time, not treated as errors.
type AlgorithmSpec struct {
	Label  string
	Name   string
	Params []string
	build  func(params map[string]any, generations, popSize int, seed int64) Optimizer
}

var algorithms = map[string]AlgorithmSpec{
	"MF": {
		Label:  "MF",
		Name:   "Mayfly Optimization",
		Params: []string{"seed"},
		build: func(params map[string]any, generations, popSize int, seed int64) Optimizer {
			if v, ok := params["seed"]; ok {
				if s, ok := asInt64(v); ok {
					seed = s
				}
			}
			return NewMayfly(generations, popSize, seed)
		},
	},
}

// Labels returns the registry labels of the supported algorithms.
func Labels() []string {
	labels := make([]string, 0, len(algorithms))
	for label := range algorithms {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// NewOptimizer builds the optimizer registered under label. The free-form
// parameter map is filtered down to the algorithm's declared parameters;
// unrecognized keys are dropped with a debug log.
func NewOptimizer(label string, params map[string]any, generations, popSize int, seed int64) (Optimizer, error) {
	spec, ok := algorithms[label]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q (supported: %v)", label, Labels())
	}

	valid := make(map[string]any)
	for key, value := range params {
		if contains(spec.Params, key) {
			valid[key] = value
		} else {
			slog.Debug("Dropping unrecognized algorithm parameter",
				"algorithm", spec.Name, "parameter", key)
		}
	}
	return spec.build(valid, generations, popSize, seed), nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
