package engine

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
)

func intOperators() Operators[int] {
	return OperatorFuncs[int]{
		GenerateFn:  func(_ *rand.Rand) (int, error) { return 123, nil },
		EvaluateFn:  func(_ int) (float64, error) { return 1.0, nil },
		MutateFn:    func(_ *rand.Rand, a int) (int, error) { return a + 1, nil },
		RecombineFn: func(_ *rand.Rand, a, b int) (int, error) { return (a + b) / 2, nil },
	}
}

func quadraticOperators() Operators[float64] {
	return OperatorFuncs[float64]{
		GenerateFn: func(rng *rand.Rand) (float64, error) { return -5 + rng.Float64()*10, nil },
		EvaluateFn: func(a float64) (float64, error) { return 5 - a*a, nil },
		MutateFn: func(rng *rand.Rand, a float64) (float64, error) {
			return a + (-0.01 + rng.Float64()*0.02), nil
		},
		RecombineFn: func(_ *rand.Rand, a, b float64) (float64, error) { return (a + b) / 2, nil },
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config[int]
	}{
		{name: "zero population", cfg: Config[int]{PopulationSize: 0, Operators: intOperators()}},
		{name: "negative generations", cfg: Config[int]{PopulationSize: 5, Generations: -1, Operators: intOperators()}},
		{name: "crossover rate below range", cfg: Config[int]{PopulationSize: 5, CrossoverRate: -0.1, Operators: intOperators()}},
		{name: "crossover rate above range", cfg: Config[int]{PopulationSize: 5, CrossoverRate: 1.1, Operators: intOperators()}},
		{name: "mutation rate below range", cfg: Config[int]{PopulationSize: 5, MutationRate: -0.1, Operators: intOperators()}},
		{name: "mutation rate above range", cfg: Config[int]{PopulationSize: 5, MutationRate: 1.5, Operators: intOperators()}},
		{name: "missing operators", cfg: Config[int]{PopulationSize: 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestZeroGenerationsReturnsSeedPopulation(t *testing.T) {
	opt, err := New(Config[int]{
		PopulationSize: 10,
		Generations:    0,
		CrossoverRate:  0.5,
		MutationRate:   0.5,
		Operators:      intOperators(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	population, err := opt.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(population) != 10 {
		t.Fatalf("expected population length 10, got %d", len(population))
	}
	for i, agent := range population {
		if agent != 123 {
			t.Fatalf("agent %d = %d, expected untouched seed value 123", i, agent)
		}
	}
}

func TestRunKeepsPopulationLength(t *testing.T) {
	for _, population := range []int{1, 2, 10} {
		for _, generations := range []int{0, 1, 5} {
			opt, err := New(Config[float64]{
				PopulationSize: population,
				Generations:    generations,
				CrossoverRate:  0.5,
				MutationRate:   0.5,
				Seed:           7,
				Operators:      quadraticOperators(),
			})
			if err != nil {
				t.Fatalf("new(n=%d g=%d): %v", population, generations, err)
			}
			final, err := opt.Run(context.Background())
			if err != nil {
				t.Fatalf("run(n=%d g=%d): %v", population, generations, err)
			}
			if len(final) != population {
				t.Fatalf("run(n=%d g=%d): final length %d", population, generations, len(final))
			}
		}
	}
}

func TestFullMutationRewritesEveryAgent(t *testing.T) {
	opt, err := New(Config[int]{
		PopulationSize: 10,
		Generations:    1,
		CrossoverRate:  0.5,
		MutationRate:   1.0,
		Operators:      intOperators(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	population, err := opt.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, agent := range population {
		if agent != 124 {
			t.Fatalf("agent %d = %d, expected every seed 123 mutated to 124", i, agent)
		}
	}
}

func TestFullCrossoverKeepsCombinedOffspring(t *testing.T) {
	ops := OperatorFuncs[int]{
		GenerateFn:  func(_ *rand.Rand) (int, error) { return 121, nil },
		EvaluateFn:  func(a int) (float64, error) { return 10 - math.Abs(float64(a)-244), nil },
		MutateFn:    func(_ *rand.Rand, a int) (int, error) { return a + 2, nil },
		RecombineFn: func(_ *rand.Rand, a, b int) (int, error) { return a + b, nil },
	}
	opt, err := New(Config[int]{
		PopulationSize: 2,
		Generations:    1,
		CrossoverRate:  1.0,
		MutationRate:   1.0,
		Operators:      ops,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	population, err := opt.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	best, err := opt.Best(population)
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if population[best] != 244 {
		t.Fatalf("best agent = %d, expected crossed-over and mutated value 244", population[best])
	}
}

func TestBestPrefersEarliestMaximalIndex(t *testing.T) {
	ops := OperatorFuncs[int]{
		EvaluateFn: func(a int) (float64, error) { return float64(a), nil },
	}

	index, err := Best([]int{1, 7, 7, 3}, ops)
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if index != 1 {
		t.Fatalf("expected earliest maximal index 1, got %d", index)
	}

	if _, err := Best(nil, ops); !errors.Is(err, ErrEmptyPopulation) {
		t.Fatalf("expected ErrEmptyPopulation, got %v", err)
	}
}

func TestPoolStaysWithinTwicePopulation(t *testing.T) {
	const populationSize = 8
	var observed []GenerationStats
	opt, err := New(Config[float64]{
		PopulationSize: populationSize,
		Generations:    4,
		CrossoverRate:  1.0,
		MutationRate:   0.5,
		Seed:           3,
		Operators:      quadraticOperators(),
		Observer:       func(stats GenerationStats) { observed = append(observed, stats) },
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	final, err := opt.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(final) != populationSize {
		t.Fatalf("final population length %d, expected %d", len(final), populationSize)
	}
	if len(observed) != 4 {
		t.Fatalf("expected 4 generation stats, got %d", len(observed))
	}
	for _, stats := range observed {
		if stats.PoolSize < populationSize || stats.PoolSize > 2*populationSize {
			t.Fatalf("generation %d pool size %d outside [%d, %d]", stats.Generation, stats.PoolSize, populationSize, 2*populationSize)
		}
		// pc = 1.0 spawns one offspring per position.
		if stats.PoolSize != 2*populationSize {
			t.Fatalf("generation %d pool size %d, expected %d with certain crossover", stats.Generation, stats.PoolSize, 2*populationSize)
		}
	}
}

func TestOperatorErrorAbortsRun(t *testing.T) {
	opFailure := errors.New("operator failure")
	ops := OperatorFuncs[int]{
		GenerateFn:  func(_ *rand.Rand) (int, error) { return 1, nil },
		EvaluateFn:  func(_ int) (float64, error) { return 0, opFailure },
		MutateFn:    func(_ *rand.Rand, a int) (int, error) { return a, nil },
		RecombineFn: func(_ *rand.Rand, a, b int) (int, error) { return a + b, nil },
	}
	opt, err := New(Config[int]{
		PopulationSize: 4,
		Generations:    1,
		CrossoverRate:  0.5,
		MutationRate:   0.5,
		Operators:      ops,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := opt.Run(context.Background()); !errors.Is(err, opFailure) {
		t.Fatalf("expected propagated operator failure, got %v", err)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	opt, err := New(Config[float64]{
		PopulationSize: 4,
		Generations:    3,
		CrossoverRate:  0.5,
		MutationRate:   0.5,
		Operators:      quadraticOperators(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := opt.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConvergesOnQuadratic(t *testing.T) {
	passed := 0
	seeds := []int64{1, 2, 3, 4, 5}
	for _, seed := range seeds {
		opt, err := New(Config[float64]{
			PopulationSize: 100,
			Generations:    20,
			CrossoverRate:  0.5,
			MutationRate:   0.4,
			Seed:           seed,
			Operators:      quadraticOperators(),
		})
		if err != nil {
			t.Fatalf("new(seed=%d): %v", seed, err)
		}
		final, err := opt.Run(context.Background())
		if err != nil {
			t.Fatalf("run(seed=%d): %v", seed, err)
		}
		best, err := opt.Best(final)
		if err != nil {
			t.Fatalf("best(seed=%d): %v", seed, err)
		}
		if math.Abs(final[best]) < 1.0 {
			passed++
		}
	}
	if passed < len(seeds)-1 {
		t.Fatalf("convergence held for %d/%d seeds", passed, len(seeds))
	}
}

func TestParallelEvaluationMatchesSequential(t *testing.T) {
	run := func(workers int) []float64 {
		opt, err := New(Config[float64]{
			PopulationSize: 30,
			Generations:    10,
			CrossoverRate:  0.6,
			MutationRate:   0.3,
			Seed:           99,
			Workers:        workers,
			Operators:      quadraticOperators(),
		})
		if err != nil {
			t.Fatalf("new(workers=%d): %v", workers, err)
		}
		final, err := opt.Run(context.Background())
		if err != nil {
			t.Fatalf("run(workers=%d): %v", workers, err)
		}
		return final
	}

	sequential := run(1)
	parallel := run(8)
	if len(sequential) != len(parallel) {
		t.Fatalf("length mismatch: %d vs %d", len(sequential), len(parallel))
	}
	for i := range sequential {
		if sequential[i] != parallel[i] {
			t.Fatalf("agent %d diverged: sequential=%v parallel=%v", i, sequential[i], parallel[i])
		}
	}
}
