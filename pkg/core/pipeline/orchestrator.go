// Package pipeline executes the fixed eight-stage market analysis sequence.
// The chain is strictly linear: every stage's prompt depends on the full
// output of its predecessor, so there is no parallelism between stages and
// no graph machinery, just an ordered list of handlers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"market_analysis/pkg/core/collect"
	"market_analysis/pkg/core/market"
	"market_analysis/pkg/models"
)

// ErrInvalidInput is returned before any stage runs when the company name
// is empty.
var ErrInvalidInput = errors.New("company name must not be empty")

// Stage is one step of the pipeline: a pure transformation of the analysis
// record. Implementations must only set their own output fields.
type Stage interface {
	Name() string
	Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error)
}

// StageError reports the stage at which a run failed and wraps the cause.
// The engine performs no retries; retry policy belongs to the LLM provider
// collaborator.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// RunState tracks a single run through its lifecycle. Completed and Failed
// are terminal; there is no resume.
type RunState int

const (
	StateNotStarted RunState = iota
	StateRunning
	StateCompleted
	StateFailed
)

// RunStatus is a snapshot of the engine's progress, for logging and the
// API layer.
type RunStatus struct {
	RunID      string
	State      RunState
	StageIndex int
	StageName  string
	Err        error
}

// Config carries the analysis tunables consumed by the engine and the
// stages it constructs.
type Config struct {
	MaxCompetitors  int           `yaml:"max_competitors"`
	DataConcurrency int           `yaml:"data_concurrency"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// Orchestrator runs the ordered stage list against one record per call.
// It holds no per-run state and is safe for concurrent runs of different
// companies.
type Orchestrator struct {
	stages []Stage
	logf   func(format string, args ...interface{})
}

// NewOrchestrator wires the standard eight stages. exec serves every LLM
// stage (per-stage provider overrides are resolved inside the executor);
// collector serves the data-collection stage.
func NewOrchestrator(exec market.PromptExecutor, collector collect.Collector, cfg Config) *Orchestrator {
	timeout := cfg.RequestTimeout
	return &Orchestrator{
		stages: []Stage{
			market.NewIndustryAgent(exec, timeout),
			market.NewCompetitorAgent(exec, timeout),
			market.NewDataCollectionAgent(collector, cfg.MaxCompetitors, cfg.DataConcurrency),
			market.NewFinancialAnalysisAgent(exec, timeout),
			market.NewSWOTAgent(exec, timeout),
			market.NewMarketPositionAgent(exec, timeout),
			market.NewTrendAgent(exec, timeout),
			market.NewReportAgent(exec, timeout),
		},
		logf: func(format string, args ...interface{}) { fmt.Printf(format, args...) },
	}
}

// NewOrchestratorWithStages builds an engine over a custom stage list,
// used by tests.
func NewOrchestratorWithStages(stages []Stage) *Orchestrator {
	return &Orchestrator{
		stages: stages,
		logf:   func(string, ...interface{}) {},
	}
}

// SetLogf overrides the progress logger.
func (o *Orchestrator) SetLogf(logf func(format string, args ...interface{})) {
	o.logf = logf
}

// StageNames returns the fixed stage order.
func (o *Orchestrator) StageNames() []string {
	names := make([]string, len(o.stages))
	for i, s := range o.stages {
		names[i] = s.Name()
	}
	return names
}

// AnalyzeCompany is the caller-facing entry point: validates input, builds
// the initial record and runs the full pipeline. On failure the partial
// record accumulated so far is returned alongside the StageError.
func (o *Orchestrator) AnalyzeCompany(ctx context.Context, companyName string) (*models.AnalysisRecord, error) {
	name := strings.TrimSpace(companyName)
	if name == "" {
		return nil, ErrInvalidInput
	}

	return o.Run(ctx, models.NewAnalysisRecord(name))
}

// Run threads the record through every stage in order, short-circuiting on
// the first unrecovered failure. Cancellation is checked at stage
// boundaries; an in-flight model call can only be interrupted by its own
// timeout.
func (o *Orchestrator) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	status := RunStatus{
		RunID: uuid.New().String(),
		State: StateNotStarted,
	}

	o.logf("[%s] Starting analysis pipeline for %s (%d stages)\n",
		status.RunID[:8], rec.TargetCompany, len(o.stages))
	start := time.Now()

	current := rec
	for i, stage := range o.stages {
		status.State = StateRunning
		status.StageIndex = i
		status.StageName = stage.Name()

		if err := ctx.Err(); err != nil {
			status.State = StateFailed
			status.Err = err
			return current, &StageError{Stage: stage.Name(), Err: err}
		}

		o.logf("[%s] Stage %d/%d: %s\n", status.RunID[:8], i+1, len(o.stages), stage.Name())

		next, err := stage.Run(ctx, current)
		if err != nil {
			status.State = StateFailed
			status.Err = err
			o.logf("[%s] Stage %s failed: %v\n", status.RunID[:8], stage.Name(), err)
			return current, &StageError{Stage: stage.Name(), Err: err}
		}
		current = next
	}

	status.State = StateCompleted
	o.logf("[%s] Pipeline completed for %s in %v\n",
		status.RunID[:8], rec.TargetCompany, time.Since(start))
	return current, nil
}
