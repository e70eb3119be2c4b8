package problem

import (
	"context"
	"testing"
)

func TestSphereConvergesNearOrigin(t *testing.T) {
	report, err := Sphere{Dimensions: 3}.Run(context.Background(), RunSpec{Seed: 9})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(report.BestByGeneration) != 40 {
		t.Fatalf("expected 40 generations of history, got %d", len(report.BestByGeneration))
	}
	// Fitness -sum(x^2) > -1 means the best vector sits inside the unit sphere.
	if report.FinalBestFitness <= -1.0 {
		t.Fatalf("expected final best fitness > -1.0, got %v", report.FinalBestFitness)
	}
}
