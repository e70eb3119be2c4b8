package problem

import (
	"context"
	"math/rand"
	"testing"
)

func TestOrderCrossoverProducesValidPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	a := []int{0, 1, 2, 3, 4, 5, 6, 7}
	b := []int{7, 6, 5, 4, 3, 2, 1, 0}

	for trial := 0; trial < 50; trial++ {
		child := orderCrossover(rng, a, b)
		if len(child) != len(a) {
			t.Fatalf("trial %d: child length %d", trial, len(child))
		}
		seen := make(map[int]bool, len(child))
		for _, city := range child {
			if city < 0 || city >= len(a) {
				t.Fatalf("trial %d: city %d out of range", trial, city)
			}
			if seen[city] {
				t.Fatalf("trial %d: duplicate city %d in %v", trial, city, child)
			}
			seen[city] = true
		}
	}
}

func TestTSPShortensTour(t *testing.T) {
	report, err := TSP{Cities: 12, LayoutSeed: 1}.Run(context.Background(), RunSpec{Seed: 7})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(report.BestByGeneration) == 0 {
		t.Fatal("expected generation history")
	}
	// Fitness is the negated tour length, so larger means shorter tours.
	if report.FinalBestFitness < report.BestByGeneration[0] {
		t.Fatalf("final tour fitness %v regressed below first generation %v",
			report.FinalBestFitness, report.BestByGeneration[0])
	}
	if report.FinalBestFitness >= 0 {
		t.Fatalf("expected negative fitness for a closed tour, got %v", report.FinalBestFitness)
	}
}

func TestTSPRejectsTinyLayouts(t *testing.T) {
	if _, err := (TSP{Cities: 2}).Run(context.Background(), RunSpec{Seed: 1}); err == nil {
		t.Fatal("expected error for a 2-city layout")
	}
}
