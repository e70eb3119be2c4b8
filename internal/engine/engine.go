package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// Config parameterizes one optimizer run. It is consumed by New and never
// changes afterwards.
type Config[T any] struct {
	// PopulationSize is the generation size N, kept invariant across
	// generations. Must be > 0.
	PopulationSize int
	// Generations is the number of generational iterations. Zero returns
	// the seed population untouched.
	Generations int
	// CrossoverRate is the per-pair offspring probability in [0, 1].
	CrossoverRate float64
	// MutationRate is the per-member mutation probability in [0, 1].
	MutationRate float64
	// Seed feeds the single random source every stochastic decision of the
	// run draws from.
	Seed int64
	// Workers bounds concurrent fitness evaluation during selection.
	// Values <= 1 evaluate sequentially. Evaluation draws no randomness,
	// so the worker count never changes the run's outcome.
	Workers int

	Operators Operators[T]

	// Observer, when set, receives diagnostics after each generation's
	// selection. Observation only; it cannot influence the search.
	Observer func(GenerationStats)
}

// GenerationStats summarizes the working pool of one generation at
// selection time.
type GenerationStats struct {
	Generation  int     `json:"generation"`
	PoolSize    int     `json:"pool_size"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  float64 `json:"min_fitness"`
}

// Optimizer runs a generational loop over an opaque agent type: seed N
// agents, then per generation pair partners, probabilistically recombine
// and mutate, and keep the N fittest by truncation. Fitness is maximized.
type Optimizer[T any] struct {
	cfg Config[T]
	rng *rand.Rand
}

func New[T any](cfg Config[T]) (*Optimizer[T], error) {
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("%w: population size must be > 0", ErrInvalidConfig)
	}
	if cfg.Generations < 0 {
		return nil, fmt.Errorf("%w: generations must be >= 0", ErrInvalidConfig)
	}
	if cfg.CrossoverRate < 0 || cfg.CrossoverRate > 1 {
		return nil, fmt.Errorf("%w: crossover rate must be in [0, 1], got %v", ErrInvalidConfig, cfg.CrossoverRate)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("%w: mutation rate must be in [0, 1], got %v", ErrInvalidConfig, cfg.MutationRate)
	}
	if cfg.Operators == nil {
		return nil, fmt.Errorf("%w: operators are required", ErrInvalidConfig)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &Optimizer[T]{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes the configured number of generations and returns the final
// population, always of length PopulationSize. Operator errors abort the
// run and propagate to the caller unretried.
func (o *Optimizer[T]) Run(ctx context.Context) ([]T, error) {
	population, err := o.seedPopulation()
	if err != nil {
		return nil, err
	}

	for gen := 0; gen < o.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pool, err := o.breed(population)
		if err != nil {
			return nil, err
		}
		if err := o.mutatePool(pool); err != nil {
			return nil, err
		}
		next, stats, err := o.truncate(ctx, pool)
		if err != nil {
			return nil, err
		}
		if o.cfg.Observer != nil {
			stats.Generation = gen + 1
			o.cfg.Observer(stats)
		}
		population = next
	}

	return population, nil
}

// Best returns the index of the maximal-fitness agent under the
// optimizer's evaluate operator. Ties keep the earliest index.
func (o *Optimizer[T]) Best(agents []T) (int, error) {
	return Best(agents, o.cfg.Operators)
}

// Best scans agents and returns the index of the first one with
// strictly-greatest fitness. An empty slice is ErrEmptyPopulation.
func Best[T any](agents []T, ops Operators[T]) (int, error) {
	if len(agents) == 0 {
		return 0, ErrEmptyPopulation
	}

	bestIndex := 0
	bestFitness, err := ops.Evaluate(agents[0])
	if err != nil {
		return 0, fmt.Errorf("evaluate agent 0: %w", err)
	}
	for i := 1; i < len(agents); i++ {
		fitness, err := ops.Evaluate(agents[i])
		if err != nil {
			return 0, fmt.Errorf("evaluate agent %d: %w", i, err)
		}
		if fitness > bestFitness {
			bestIndex = i
			bestFitness = fitness
		}
	}
	return bestIndex, nil
}

func (o *Optimizer[T]) seedPopulation() ([]T, error) {
	population := make([]T, 0, o.cfg.PopulationSize)
	for i := 0; i < o.cfg.PopulationSize; i++ {
		agent, err := o.cfg.Operators.Generate(o.rng)
		if err != nil {
			return nil, fmt.Errorf("generate seed agent %d: %w", i, err)
		}
		population = append(population, agent)
	}
	return population, nil
}

// breed copies the generation into a working pool and appends at most one
// offspring per position, so the pool length stays within [N, 2N].
// Parents are never removed by crossover.
func (o *Optimizer[T]) breed(generation []T) ([]T, error) {
	pool := make([]T, len(generation), 2*len(generation))
	copy(pool, generation)

	if len(generation) < 2 {
		// No distinct partner exists for a lone agent.
		return pool, nil
	}

	partners := o.pairPartners(len(generation))
	for i, partner := range partners {
		if o.rng.Float64() >= o.cfg.CrossoverRate {
			continue
		}
		child, err := o.cfg.Operators.Recombine(o.rng, generation[i], generation[partner])
		if err != nil {
			return nil, fmt.Errorf("recombine agents %d and %d: %w", i, partner, err)
		}
		pool = append(pool, child)
	}
	return pool, nil
}

// pairPartners draws one partner index per position, uniformly and with
// replacement across positions, resampling on the spot until the partner
// differs from the position. The same partner may serve several positions
// and some agents may never be picked.
func (o *Optimizer[T]) pairPartners(n int) []int {
	partners := make([]int, n)
	for x := range partners {
		y := o.rng.Intn(n)
		for y == x {
			y = o.rng.Intn(n)
		}
		partners[x] = y
	}
	return partners
}

func (o *Optimizer[T]) mutatePool(pool []T) error {
	for i := range pool {
		if o.rng.Float64() >= o.cfg.MutationRate {
			continue
		}
		mutated, err := o.cfg.Operators.Mutate(o.rng, pool[i])
		if err != nil {
			return fmt.Errorf("mutate pool member %d: %w", i, err)
		}
		pool[i] = mutated
	}
	return nil
}

// truncate keeps the PopulationSize fittest pool members, ordered by
// descending fitness. The stable sort preserves pool order among equal
// fitness values, so the earliest member wins ties, matching a repeated
// remove-the-max scan.
func (o *Optimizer[T]) truncate(ctx context.Context, pool []T) ([]T, GenerationStats, error) {
	fitness, err := o.evaluatePool(ctx, pool)
	if err != nil {
		return nil, GenerationStats{}, err
	}

	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fitness[order[i]] > fitness[order[j]]
	})

	next := make([]T, o.cfg.PopulationSize)
	for i := range next {
		next[i] = pool[order[i]]
	}

	total := 0.0
	for _, f := range fitness {
		total += f
	}
	stats := GenerationStats{
		PoolSize:    len(pool),
		BestFitness: fitness[order[0]],
		MeanFitness: total / float64(len(fitness)),
		MinFitness:  fitness[order[len(order)-1]],
	}
	return next, stats, nil
}

func (o *Optimizer[T]) evaluatePool(ctx context.Context, pool []T) ([]float64, error) {
	if o.cfg.Workers <= 1 {
		fitness := make([]float64, len(pool))
		for i, agent := range pool {
			f, err := o.cfg.Operators.Evaluate(agent)
			if err != nil {
				return nil, fmt.Errorf("evaluate pool member %d: %w", i, err)
			}
			fitness[i] = f
		}
		return fitness, nil
	}

	type job struct {
		idx   int
		agent T
	}
	type result struct {
		idx     int
		fitness float64
		err     error
	}

	jobs := make(chan job)
	results := make(chan result, len(pool))

	workerCount := o.cfg.Workers
	if workerCount > len(pool) {
		workerCount = len(pool)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				f, err := o.cfg.Operators.Evaluate(j.agent)
				results <- result{idx: j.idx, fitness: f, err: err}
			}
		}()
	}

	for i := range pool {
		jobs <- job{idx: i, agent: pool[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	fitness := make([]float64, len(pool))
	for res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("evaluate pool member %d: %w", res.idx, res.err)
		}
		fitness[res.idx] = res.fitness
	}
	return fitness, nil
}
