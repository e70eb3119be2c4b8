package problem

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"anagenesis/internal/engine"
)

// TSP minimizes the length of a closed tour over a seeded random city
// layout; fitness is the negated tour length. Agents are permutations of
// city indices.
type TSP struct {
	// Cities is the number of cities; defaults to 12.
	Cities int
	// LayoutSeed fixes the city coordinates independently of the run seed,
	// so different run seeds search the same map. Defaults to 1.
	LayoutSeed int64
}

type tspCity struct {
	x, y float64
}

func (TSP) Name() string {
	return "tsp"
}

func (TSP) Description() string {
	return "minimize the closed-tour length over a seeded random city layout"
}

func (TSP) Defaults() RunSpec {
	return RunSpec{
		PopulationSize: 80,
		Generations:    60,
		CrossoverRate:  0.9,
		MutationRate:   0.6,
	}
}

func (t TSP) Run(ctx context.Context, spec RunSpec) (Report, error) {
	spec = withDefaults(spec, t.Defaults())
	cityCount := t.Cities
	if cityCount <= 0 {
		cityCount = 12
	}
	if cityCount < 3 {
		return Report{}, fmt.Errorf("tsp requires at least 3 cities, got %d", cityCount)
	}
	layoutSeed := t.LayoutSeed
	if layoutSeed == 0 {
		layoutSeed = 1
	}

	cities := buildCityLayout(cityCount, layoutSeed)

	ops := engine.OperatorFuncs[[]int]{
		OperatorsName: t.Name(),
		GenerateFn: func(rng *rand.Rand) ([]int, error) {
			return rng.Perm(cityCount), nil
		},
		EvaluateFn: func(tour []int) (float64, error) {
			return -tourLength(cities, tour), nil
		},
		MutateFn: func(rng *rand.Rand, tour []int) ([]int, error) {
			mutated := append([]int(nil), tour...)
			i := rng.Intn(len(mutated))
			j := rng.Intn(len(mutated))
			mutated[i], mutated[j] = mutated[j], mutated[i]
			return mutated, nil
		},
		RecombineFn: func(rng *rand.Rand, a, b []int) ([]int, error) {
			return orderCrossover(rng, a, b), nil
		},
	}
	return runOperators(ctx, spec, ops, func(tour []int) string {
		return fmt.Sprint(tour)
	})
}

func buildCityLayout(count int, seed int64) []tspCity {
	rng := rand.New(rand.NewSource(seed))
	cities := make([]tspCity, count)
	for i := range cities {
		cities[i] = tspCity{x: rng.Float64() * 100, y: rng.Float64() * 100}
	}
	return cities
}

func tourLength(cities []tspCity, tour []int) float64 {
	total := 0.0
	for i := range tour {
		from := cities[tour[i]]
		to := cities[tour[(i+1)%len(tour)]]
		total += math.Hypot(to.x-from.x, to.y-from.y)
	}
	return total
}

// orderCrossover copies one segment of parent a into the child and fills
// the remaining positions with the unused cities in parent b's order,
// starting after the segment and wrapping around.
func orderCrossover(rng *rand.Rand, a, b []int) []int {
	n := len(a)
	child := make([]int, n)
	for i := range child {
		child[i] = -1
	}

	start := rng.Intn(n)
	end := start + 1 + rng.Intn(n-start)
	copy(child[start:end], a[start:end])

	used := make(map[int]bool, n)
	for _, city := range child[start:end] {
		used[city] = true
	}

	idx := end % n
	for i := 0; i < n; i++ {
		city := b[(end+i)%n]
		if used[city] {
			continue
		}
		child[idx] = city
		used[city] = true
		idx = (idx + 1) % n
	}
	return child
}
