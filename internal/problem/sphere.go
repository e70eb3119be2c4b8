package problem

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"anagenesis/internal/engine"
)

// Sphere maximizes the negated sphere function -sum(x_i^2) over a real
// vector with coordinates drawn from [-5, 5).
type Sphere struct {
	// Dimensions of the search space; defaults to 3.
	Dimensions int
}

func (Sphere) Name() string {
	return "sphere"
}

func (Sphere) Description() string {
	return "maximize -sum(x_i^2) over a real vector in [-5, 5)^d"
}

func (Sphere) Defaults() RunSpec {
	return RunSpec{
		PopulationSize: 120,
		Generations:    40,
		CrossoverRate:  0.6,
		MutationRate:   0.4,
	}
}

func (s Sphere) Run(ctx context.Context, spec RunSpec) (Report, error) {
	spec = withDefaults(spec, s.Defaults())
	dimensions := s.Dimensions
	if dimensions <= 0 {
		dimensions = 3
	}

	ops := engine.OperatorFuncs[[]float64]{
		OperatorsName: s.Name(),
		GenerateFn: func(rng *rand.Rand) ([]float64, error) {
			agent := make([]float64, dimensions)
			for i := range agent {
				agent[i] = -5 + rng.Float64()*10
			}
			return agent, nil
		},
		EvaluateFn: func(agent []float64) (float64, error) {
			total := 0.0
			for _, x := range agent {
				total += x * x
			}
			return -total, nil
		},
		MutateFn: func(rng *rand.Rand, agent []float64) ([]float64, error) {
			mutated := append([]float64(nil), agent...)
			i := rng.Intn(len(mutated))
			mutated[i] += -0.1 + rng.Float64()*0.2
			return mutated, nil
		},
		RecombineFn: func(_ *rand.Rand, a, b []float64) ([]float64, error) {
			if len(a) != len(b) {
				return nil, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
			}
			child := make([]float64, len(a))
			for i := range child {
				child[i] = (a[i] + b[i]) / 2
			}
			return child, nil
		},
	}
	return runOperators(ctx, spec, ops, renderVector)
}

func renderVector(agent []float64) string {
	parts := make([]string, len(agent))
	for i, x := range agent {
		parts[i] = fmt.Sprintf("%.6f", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
