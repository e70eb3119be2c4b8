package problem

import (
	"context"
	"math/rand"
	"strconv"

	"anagenesis/internal/engine"
)

// Quadratic maximizes 5 - a^2 over a scalar agent drawn from [-5, 5).
// The optimum sits at a = 0 with fitness 5.
type Quadratic struct{}

func (Quadratic) Name() string {
	return "quadratic"
}

func (Quadratic) Description() string {
	return "maximize 5 - a^2 over a scalar agent in [-5, 5)"
}

func (Quadratic) Defaults() RunSpec {
	return RunSpec{
		PopulationSize: 100,
		Generations:    20,
		CrossoverRate:  0.5,
		MutationRate:   0.4,
	}
}

func (q Quadratic) Run(ctx context.Context, spec RunSpec) (Report, error) {
	spec = withDefaults(spec, q.Defaults())

	ops := engine.OperatorFuncs[float64]{
		OperatorsName: q.Name(),
		GenerateFn: func(rng *rand.Rand) (float64, error) {
			return -5 + rng.Float64()*10, nil
		},
		EvaluateFn: func(a float64) (float64, error) {
			return 5 - a*a, nil
		},
		MutateFn: func(rng *rand.Rand, a float64) (float64, error) {
			return a + (-0.01 + rng.Float64()*0.02), nil
		},
		RecombineFn: func(_ *rand.Rand, a, b float64) (float64, error) {
			return (a + b) / 2, nil
		},
	}
	return runOperators(ctx, spec, ops, func(a float64) string {
		return strconv.FormatFloat(a, 'g', -1, 64)
	})
}
