package problem

import (
	"context"
	"testing"
)

func TestQuadraticConvergesNearOptimum(t *testing.T) {
	report, err := Quadratic{}.Run(context.Background(), RunSpec{Seed: 5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(report.BestByGeneration) != 20 {
		t.Fatalf("expected 20 generations of history, got %d", len(report.BestByGeneration))
	}
	if len(report.Diagnostics) != 20 {
		t.Fatalf("expected 20 diagnostics entries, got %d", len(report.Diagnostics))
	}
	// |a| < 1 is fitness > 4.
	if report.FinalBestFitness <= 4.0 {
		t.Fatalf("expected final best fitness > 4.0, got %v", report.FinalBestFitness)
	}
	if report.BestAgent == "" {
		t.Fatal("expected a rendered best agent")
	}
}

func TestQuadraticReportsEffectiveSpec(t *testing.T) {
	report, err := Quadratic{}.Run(context.Background(), RunSpec{Seed: 5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Zero request fields must come back filled with the problem defaults.
	want := RunSpec{PopulationSize: 100, Generations: 20, CrossoverRate: 0.5, MutationRate: 0.4, Seed: 5, Workers: 1}
	if report.Spec != want {
		t.Fatalf("effective spec %+v, expected %+v", report.Spec, want)
	}
}

func TestQuadraticRespectsSpecOverrides(t *testing.T) {
	report, err := Quadratic{}.Run(context.Background(), RunSpec{
		PopulationSize: 10,
		Generations:    3,
		CrossoverRate:  0.5,
		MutationRate:   0.5,
		Seed:           1,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.BestByGeneration) != 3 {
		t.Fatalf("expected 3 generations of history, got %d", len(report.BestByGeneration))
	}
}
