package engine

import (
	"fmt"
	"math/rand"
)

// Operators supplies the four caller-defined operations the optimizer is
// generic over. The agent type is opaque to the engine: agents are only
// duplicated by value and handed back to these operations, so an operator
// must return a fresh value rather than modify its input in place.
// Higher Evaluate results are better.
type Operators[T any] interface {
	Name() string
	Generate(rng *rand.Rand) (T, error)
	Evaluate(agent T) (float64, error)
	Mutate(rng *rand.Rand, agent T) (T, error)
	Recombine(rng *rand.Rand, a, b T) (T, error)
}

// OperatorFuncs adapts plain closures to the Operators interface.
type OperatorFuncs[T any] struct {
	OperatorsName string
	GenerateFn    func(rng *rand.Rand) (T, error)
	EvaluateFn    func(agent T) (float64, error)
	MutateFn      func(rng *rand.Rand, agent T) (T, error)
	RecombineFn   func(rng *rand.Rand, a, b T) (T, error)
}

func (f OperatorFuncs[T]) Name() string {
	if f.OperatorsName == "" {
		return "funcs"
	}
	return f.OperatorsName
}

func (f OperatorFuncs[T]) Generate(rng *rand.Rand) (T, error) {
	if f.GenerateFn == nil {
		var zero T
		return zero, fmt.Errorf("generate operator is required")
	}
	return f.GenerateFn(rng)
}

func (f OperatorFuncs[T]) Evaluate(agent T) (float64, error) {
	if f.EvaluateFn == nil {
		return 0, fmt.Errorf("evaluate operator is required")
	}
	return f.EvaluateFn(agent)
}

func (f OperatorFuncs[T]) Mutate(rng *rand.Rand, agent T) (T, error) {
	if f.MutateFn == nil {
		var zero T
		return zero, fmt.Errorf("mutate operator is required")
	}
	return f.MutateFn(rng, agent)
}

func (f OperatorFuncs[T]) Recombine(rng *rand.Rand, a, b T) (T, error) {
	if f.RecombineFn == nil {
		var zero T
		return zero, fmt.Errorf("recombine operator is required")
	}
	return f.RecombineFn(rng, a, b)
}
