package problem

import (
	"context"
	"math/rand"
	"strings"

	"anagenesis/internal/engine"
)

// OneMax maximizes the number of set bits in a fixed-length bitstring.
// The optimum is the all-ones string with fitness equal to Bits.
type OneMax struct {
	// Bits is the bitstring length; defaults to 32.
	Bits int
}

func (OneMax) Name() string {
	return "onemax"
}

func (OneMax) Description() string {
	return "maximize the count of set bits in a fixed-length bitstring"
}

func (OneMax) Defaults() RunSpec {
	return RunSpec{
		PopulationSize: 80,
		Generations:    60,
		CrossoverRate:  0.9,
		MutationRate:   0.6,
	}
}

func (m OneMax) Run(ctx context.Context, spec RunSpec) (Report, error) {
	spec = withDefaults(spec, m.Defaults())
	bits := m.Bits
	if bits <= 0 {
		bits = 32
	}

	ops := engine.OperatorFuncs[[]bool]{
		OperatorsName: m.Name(),
		GenerateFn: func(rng *rand.Rand) ([]bool, error) {
			agent := make([]bool, bits)
			for i := range agent {
				agent[i] = rng.Intn(2) == 1
			}
			return agent, nil
		},
		EvaluateFn: func(agent []bool) (float64, error) {
			count := 0
			for _, bit := range agent {
				if bit {
					count++
				}
			}
			return float64(count), nil
		},
		MutateFn: func(rng *rand.Rand, agent []bool) ([]bool, error) {
			mutated := append([]bool(nil), agent...)
			i := rng.Intn(len(mutated))
			mutated[i] = !mutated[i]
			return mutated, nil
		},
		RecombineFn: func(rng *rand.Rand, a, b []bool) ([]bool, error) {
			if len(a) < 2 {
				return append([]bool(nil), a...), nil
			}
			// One-point crossover with the cut strictly inside the string.
			cut := 1 + rng.Intn(len(a)-1)
			child := make([]bool, len(a))
			copy(child[:cut], a[:cut])
			copy(child[cut:], b[cut:])
			return child, nil
		},
	}
	return runOperators(ctx, spec, ops, renderBits)
}

func renderBits(agent []bool) string {
	var sb strings.Builder
	sb.Grow(len(agent))
	for _, bit := range agent {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
