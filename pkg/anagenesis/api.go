// Package anagenesis is the embedding surface for the optimizer: it wires
// the problem registry, the telemetry store, and the benchmark artifacts
// behind a single client so callers do not assemble those pieces by hand.
package anagenesis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"anagenesis/internal/model"
	"anagenesis/internal/problem"
	"anagenesis/internal/stats"
	"anagenesis/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "anagenesis.db"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
}

type Client struct {
	store storage.Store

	benchmarksDir string
	exportsDir    string
}

type RunRequest struct {
	Problem       string
	Population    int
	Generations   int
	CrossoverRate float64
	MutationRate  float64
	Seed          int64
	Workers       int
}

type RunSummary struct {
	RunID            string
	Problem          string
	ArtifactsDir     string
	BestByGeneration []float64
	FinalBestFitness float64
	BestAgent        string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Problem          string
	Seed             int64
	Population       int
	Generations      int
	FinalBestFitness float64
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ProblemItem struct {
	Name        string
	Description string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := problem.RegisterDefaults(); err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Problem == "" {
		req.Problem = "quadratic"
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}

	target, err := problem.Resolve(req.Problem)
	if err != nil {
		return RunSummary{}, err
	}

	report, err := target.Run(ctx, problem.RunSpec{
		PopulationSize: req.Population,
		Generations:    req.Generations,
		CrossoverRate:  req.CrossoverRate,
		MutationRate:   req.MutationRate,
		Seed:           req.Seed,
		Workers:        req.Workers,
	})
	if err != nil {
		return RunSummary{}, fmt.Errorf("run problem %s: %w", req.Problem, err)
	}

	now := time.Now().UTC()
	runID := fmt.Sprintf("%s-%s", req.Problem, uuid.NewString())
	// Persist the parameters the problem actually ran with, not the raw
	// request, which may have left fields to the problem's defaults.
	effective := report.Spec

	diagnostics := make([]model.GenerationDiagnostics, 0, len(report.Diagnostics))
	for _, gen := range report.Diagnostics {
		diagnostics = append(diagnostics, model.GenerationDiagnostics{
			Generation:  gen.Generation,
			PoolSize:    gen.PoolSize,
			BestFitness: gen.BestFitness,
			MeanFitness: gen.MeanFitness,
			MinFitness:  gen.MinFitness,
		})
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          runID,
			Problem:        req.Problem,
			PopulationSize: effective.PopulationSize,
			Generations:    effective.Generations,
			CrossoverRate:  effective.CrossoverRate,
			MutationRate:   effective.MutationRate,
			Seed:           effective.Seed,
			Workers:        effective.Workers,
		},
		BestByGeneration:      report.BestByGeneration,
		GenerationDiagnostics: diagnostics,
		FinalBestFitness:      report.FinalBestFitness,
		BestAgent:             report.BestAgent,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:            runID,
		Problem:          req.Problem,
		PopulationSize:   effective.PopulationSize,
		Generations:      effective.Generations,
		Seed:             effective.Seed,
		Workers:          effective.Workers,
		FinalBestFitness: report.FinalBestFitness,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	if err := c.store.SaveRunRecord(ctx, model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:               runID,
		Problem:          req.Problem,
		PopulationSize:   effective.PopulationSize,
		Generations:      effective.Generations,
		CrossoverRate:    effective.CrossoverRate,
		MutationRate:     effective.MutationRate,
		Seed:             effective.Seed,
		Workers:          effective.Workers,
		FinalBestFitness: report.FinalBestFitness,
		BestAgent:        report.BestAgent,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, report.BestByGeneration); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveDiagnostics(ctx, runID, diagnostics); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		Problem:          req.Problem,
		ArtifactsDir:     filepath.Clean(runDir),
		BestByGeneration: append([]float64(nil), report.BestByGeneration...),
		FinalBestFitness: report.FinalBestFitness,
		BestAgent:        report.BestAgent,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Problem:          e.Problem,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			Generations:      e.Generations,
			FinalBestFitness: e.FinalBestFitness,
		})
	}
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		latest, err := c.latestRunID()
		if err != nil {
			return ExportSummary{}, err
		}
		runID = latest
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}

	diagnostics, ok, err := c.store.GetDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return diagnostics, nil
}

func (c *Client) Problems(_ context.Context) ([]ProblemItem, error) {
	names := problem.List()
	out := make([]ProblemItem, 0, len(names))
	for _, name := range names {
		target, err := problem.Resolve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, ProblemItem{Name: target.Name(), Description: target.Description()})
	}
	return out, nil
}

func (c *Client) resolveRunID(runID string, latest bool, limit int) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if limit < 0 {
		return "", errors.New("limit must be >= 0")
	}
	if latest {
		return c.latestRunID()
	}
	if runID == "" {
		return "", errors.New("run id or latest is required")
	}
	return runID, nil
}

func (c *Client) latestRunID() (string, error) {
	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}
