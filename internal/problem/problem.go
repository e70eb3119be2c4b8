package problem

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"anagenesis/internal/engine"
)

var (
	ErrProblemExists   = errors.New("problem already registered")
	ErrProblemNotFound = errors.New("problem not found")
)

// RunSpec carries the optimizer parameters for one problem run. Zero or
// negative fields fall back to the problem's defaults; the seed is taken
// as given.
type RunSpec struct {
	PopulationSize int
	Generations    int
	CrossoverRate  float64
	MutationRate   float64
	Seed           int64
	Workers        int
}

type Report struct {
	// Spec echoes the parameters the run actually used, with the
	// problem's defaults filled in for fields the caller left zero.
	Spec             RunSpec
	BestByGeneration []float64
	Diagnostics      []engine.GenerationStats
	FinalBestFitness float64
	BestAgent        string
}

// Problem packages an agent type with its four operators and a default
// parameterization, so a run needs nothing beyond a RunSpec.
type Problem interface {
	Name() string
	Description() string
	Run(ctx context.Context, spec RunSpec) (Report, error)
}

type Builder func() Problem

var problemRegistry = struct {
	mu sync.RWMutex
	m  map[string]Builder
}{
	m: make(map[string]Builder),
}

func Register(name string, build Builder) error {
	if name == "" {
		return errors.New("problem name is required")
	}
	if build == nil {
		return errors.New("problem builder is required")
	}

	problemRegistry.mu.Lock()
	defer problemRegistry.mu.Unlock()

	if _, exists := problemRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrProblemExists, name)
	}
	problemRegistry.m[name] = build
	return nil
}

func Resolve(name string) (Problem, error) {
	problemRegistry.mu.RLock()
	build, ok := problemRegistry.m[name]
	problemRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProblemNotFound, name)
	}
	return build(), nil
}

func List() []string {
	problemRegistry.mu.RLock()
	defer problemRegistry.mu.RUnlock()

	names := make([]string, 0, len(problemRegistry.m))
	for name := range problemRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterDefaults registers the built-in problems. Already-registered
// names are left as they are, so repeated calls are safe.
func RegisterDefaults() error {
	defaults := map[string]Builder{
		"quadratic": func() Problem { return Quadratic{} },
		"sphere":    func() Problem { return Sphere{} },
		"onemax":    func() Problem { return OneMax{} },
		"tsp":       func() Problem { return TSP{} },
	}
	for name, build := range defaults {
		if err := Register(name, build); err != nil && !errors.Is(err, ErrProblemExists) {
			return err
		}
	}
	return nil
}

func withDefaults(spec, defaults RunSpec) RunSpec {
	if spec.PopulationSize <= 0 {
		spec.PopulationSize = defaults.PopulationSize
	}
	if spec.Generations <= 0 {
		spec.Generations = defaults.Generations
	}
	if spec.CrossoverRate <= 0 {
		spec.CrossoverRate = defaults.CrossoverRate
	}
	if spec.MutationRate <= 0 {
		spec.MutationRate = defaults.MutationRate
	}
	if spec.Workers <= 0 {
		spec.Workers = 1
	}
	return spec
}

func runOperators[T any](ctx context.Context, spec RunSpec, ops engine.Operators[T], render func(T) string) (Report, error) {
	var diagnostics []engine.GenerationStats
	opt, err := engine.New(engine.Config[T]{
		PopulationSize: spec.PopulationSize,
		Generations:    spec.Generations,
		CrossoverRate:  spec.CrossoverRate,
		MutationRate:   spec.MutationRate,
		Seed:           spec.Seed,
		Workers:        spec.Workers,
		Operators:      ops,
		Observer: func(stats engine.GenerationStats) {
			diagnostics = append(diagnostics, stats)
		},
	})
	if err != nil {
		return Report{}, err
	}

	final, err := opt.Run(ctx)
	if err != nil {
		return Report{}, err
	}
	best, err := engine.Best(final, ops)
	if err != nil {
		return Report{}, err
	}
	bestFitness, err := ops.Evaluate(final[best])
	if err != nil {
		return Report{}, err
	}

	history := make([]float64, 0, len(diagnostics))
	for _, stats := range diagnostics {
		history = append(history, stats.BestFitness)
	}
	return Report{
		Spec:             spec,
		BestByGeneration: history,
		Diagnostics:      diagnostics,
		FinalBestFitness: bestFitness,
		BestAgent:        render(final[best]),
	}, nil
}
