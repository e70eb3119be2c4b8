package problem

import (
	"context"
	"strings"
	"testing"
)

func TestOneMaxConvergesTowardAllOnes(t *testing.T) {
	report, err := OneMax{Bits: 32}.Run(context.Background(), RunSpec{Seed: 11})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.FinalBestFitness < 28 {
		t.Fatalf("expected final best fitness >= 28 of 32 bits, got %v", report.FinalBestFitness)
	}
	if len(report.BestAgent) != 32 {
		t.Fatalf("expected 32-character bitstring, got %q", report.BestAgent)
	}
	ones := strings.Count(report.BestAgent, "1")
	if float64(ones) != report.FinalBestFitness {
		t.Fatalf("rendered agent has %d ones, fitness says %v", ones, report.FinalBestFitness)
	}
}

func TestOneMaxImprovesOverFirstGeneration(t *testing.T) {
	report, err := OneMax{Bits: 24}.Run(context.Background(), RunSpec{Seed: 2})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.BestByGeneration) == 0 {
		t.Fatal("expected generation history")
	}
	first := report.BestByGeneration[0]
	if report.FinalBestFitness < first {
		t.Fatalf("final best %v regressed below first generation best %v", report.FinalBestFitness, first)
	}
}
