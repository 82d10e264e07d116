// Package runtime wires the remedy CLI to the repair pipeline. It
// centralizes configuration loading, telemetry, run history, and the
// stage plumbing from issues to recorded outcomes.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/lexcodex/remedy/agents"
	"github.com/lexcodex/remedy/analysis"
	"github.com/lexcodex/remedy/execution"
	"github.com/lexcodex/remedy/framework"
	"github.com/lexcodex/remedy/persistence"
	"github.com/lexcodex/remedy/validation"
)

// Runtime owns the pipeline stages and their shared dependencies.
type Runtime struct {
	Config      Config
	Pipeline    *agents.PipelineConfig
	AgentCtx    *framework.AgentContext
	Coordinator *agents.Coordinator
	Tracker     *agents.Tracker
	Planner     *analysis.Planner
	Executor    *execution.Executor
	Validator   *validation.Validator
	Store       *persistence.RunStore
	Logger      *log.Logger

	logFile   io.Closer
	telemetry *framework.JSONFileTelemetry
}

// IssueOutcome is the terminal state of one submitted issue.
type IssueOutcome struct {
	IssueID    string
	IssueType  string
	FilePath   string
	Accepted   bool
	Attempts   int
	Confidence float64
	Detail     string
}

// RunReport aggregates one pipeline invocation.
type RunReport struct {
	RunID       string
	Started     time.Time
	Duration    time.Duration
	Issues      int
	Fallbacks   int
	Accepted    int
	Rejected    int
	Outcomes    []IssueOutcome
	Specialists map[string]agents.SpecialistActivity
}

// New builds a runtime. The workspace config directory is created on
// demand so first runs need no setup step.
func New(ctx context.Context, cfg Config) (*Runtime, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(agents.ConfigDir(cfg.ProjectPath), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	logger := log.New(io.MultiWriter(os.Stdout, logFile), "remedy ", log.LstdFlags|log.Lmicroseconds)

	pipeline, err := agents.LoadPipelineConfig(cfg.ConfigPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("pipeline config load failed, using defaults: %v", err)
		pipeline = agents.DefaultPipelineConfig()
	}

	agentCtx := framework.NewAgentContext(cfg.ProjectPath)
	agentCtx.Telemetry = framework.LogTelemetry{Logger: logger}

	rt := &Runtime{
		Config:   cfg,
		Pipeline: pipeline,
		AgentCtx: agentCtx,
		Logger:   logger,
		logFile:  logFile,
	}

	if pipeline.Telemetry.Path != "" {
		sink, err := framework.NewJSONFileTelemetry(cfg.resolve(pipeline.Telemetry.Path))
		if err != nil {
			logger.Printf("telemetry sink unavailable: %v", err)
		} else {
			rt.telemetry = sink
			agentCtx.Telemetry = framework.MultiplexTelemetry{Sinks: []framework.Telemetry{agentCtx.Telemetry, sink}}
		}
	}

	rt.Tracker = agents.NewTracker(cfg.Registerer)
	rt.Coordinator = agents.NewCoordinator(agents.DefaultRegistry(), rt.Tracker, agentCtx, agents.CoordinatorConfig{
		MaxConcurrent: pipeline.Analysis.MaxConcurrent,
		Proactive:     cfg.Proactive,
	})
	rt.Coordinator.SetLogger(logger)

	specialists, err := rt.Coordinator.Specialists()
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Planner = analysis.NewPlanner(agentCtx, analysis.Options{
		Window:        pipeline.Analysis.ContextWindow,
		MaxConcurrent: pipeline.Analysis.MaxConcurrent,
	})
	rt.Executor = execution.NewExecutor(agentCtx, specialists, pipeline.Execution.ChunkSize)
	rt.Executor.SetLogger(logger)
	rt.Validator = validation.NewValidator(agentCtx, nil, validation.Options{
		TestCommand: pipeline.Validation.TestCommand,
		TestTimeout: pipeline.TestTimeout(),
		MaxAttempts: pipeline.Validation.MaxAttempts,
	})

	store, err := persistence.OpenRunStore(cfg.resolve(pipeline.History.Path))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open run store: %w", err)
	}
	rt.Store = store
	return rt, nil
}

// Close releases resources managed by the runtime.
func (r *Runtime) Close() error {
	var first error
	if r.Store != nil {
		first = r.Store.Close()
	}
	if r.telemetry != nil {
		if err := r.telemetry.Close(); err != nil && first == nil {
			first = err
		}
	}
	if r.logFile != nil {
		if err := r.logFile.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run drives the staged pipeline: plan every issue, execute acceptable
// plans under the file locks, validate each touched file, and roll back
// edits validation rejects. Every submitted issue lands in exactly one
// outcome.
func (r *Runtime) Run(ctx context.Context, issues []framework.Issue) (*RunReport, error) {
	started := time.Now()
	report := &RunReport{Started: started, Issues: len(issues)}
	r.AgentCtx.Emit(framework.Event{Type: framework.EventRunStart, Stage: "runtime",
		Message: fmt.Sprintf("%d issues", len(issues))})

	runID, err := r.Store.BeginRun(r.Config.ProjectPath, len(issues))
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	report.RunID = runID

	plans := r.Planner.AnalyzeIssues(ctx, issues)

	threshold := r.Pipeline.RiskThreshold()
	executable := make([]*framework.FixPlan, 0, len(plans))
	planIdx := make([]int, 0, len(plans))
	outcomes := make([]IssueOutcome, len(issues))
	for i, plan := range plans {
		outcomes[i] = IssueOutcome{
			IssueID:   issues[i].ID,
			IssueType: string(issues[i].Type),
			FilePath:  plan.FilePath,
		}
		if plan.ValidatedBy == analysis.FallbackValidatedBy {
			report.Fallbacks++
		}
		if !plan.IsAcceptableRisk(threshold) {
			outcomes[i].Detail = fmt.Sprintf("plan risk %s exceeds threshold %s; manual review required", plan.Risk, threshold)
			continue
		}
		executable = append(executable, plan)
		planIdx = append(planIdx, i)
	}

	backups := r.backupFiles(executable)
	results := r.Executor.ExecuteAll(ctx, executable)

	validateIdx := make(map[string][]int)
	var fileOrder []string
	for j, res := range results {
		i := planIdx[j]
		if !res.Success {
			outcomes[i].Detail = firstOf(res.RemainingIssues, "fix not applied")
			continue
		}
		outcomes[i].Confidence = res.Confidence
		if len(res.FilesModified) == 0 {
			outcomes[i].Detail = firstOf(res.FixesApplied, "no file modified")
			continue
		}
		path := executable[j].FilePath
		if _, seen := validateIdx[path]; !seen {
			fileOrder = append(fileOrder, path)
		}
		validateIdx[path] = append(validateIdx[path], i)
		outcomes[i].Detail = firstOf(res.FixesApplied, "fix applied")
	}

	// One verdict per touched file. A file holds the combined edits of every
	// plan that modified it, so the verdict covers them all and a rollback
	// rejects them together.
	for _, path := range fileOrder {
		verdict, attempts := r.validateFile(ctx, path)
		if !verdict.Valid {
			r.restoreFile(path, backups)
		}
		for _, i := range validateIdx[path] {
			outcomes[i].Attempts = attempts
			if verdict.Valid {
				outcomes[i].Accepted = true
				continue
			}
			outcomes[i].Detail = "validation rejected: " + firstOf(verdict.Errors, "unspecified")
		}
	}

	for i, out := range outcomes {
		if out.Accepted {
			report.Accepted++
		} else {
			report.Rejected++
		}
		if err := r.Store.RecordOutcome(persistence.OutcomeRecord{
			RunID:      runID,
			IssueID:    out.IssueID,
			IssueType:  out.IssueType,
			FilePath:   out.FilePath,
			Accepted:   out.Accepted,
			Attempts:   out.Attempts,
			Confidence: out.Confidence,
			Detail:     out.Detail,
		}); err != nil {
			r.Logger.Printf("record outcome for issue %s: %v", out.IssueID, err)
		}
		report.Outcomes = append(report.Outcomes, outcomes[i])
	}

	if err := r.Store.FinishRun(runID, report.Accepted, report.Rejected); err != nil {
		r.Logger.Printf("finish run %s: %v", runID, err)
	}
	report.Duration = time.Since(started)
	report.Specialists = r.Tracker.Snapshot()
	r.AgentCtx.Emit(framework.Event{Type: framework.EventRunFinish, Stage: "runtime",
		Message: fmt.Sprintf("accepted=%d rejected=%d", report.Accepted, report.Rejected)})
	return report, nil
}

// Dispatch routes issues straight through the coordinator, bypassing the
// planning stage. Used for issue types where a specialist can act without
// a pre-computed plan.
func (r *Runtime) Dispatch(ctx context.Context, issues []framework.Issue) (*framework.FixResult, error) {
	return r.Coordinator.HandleIssues(ctx, issues)
}

// validateFile reads the current on-disk content and runs the retry loop.
// An unreadable file counts as a rejection.
func (r *Runtime) validateFile(ctx context.Context, path string) (framework.ValidationResult, int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return framework.Invalid(fmt.Sprintf("read back %s: %v", path, err)), 0
	}
	return r.Validator.ValidateWithRetry(ctx, string(data), path)
}

func (r *Runtime) backupFiles(plans []*framework.FixPlan) map[string][]byte {
	backups := make(map[string][]byte)
	for _, plan := range plans {
		if plan.FilePath == "" {
			continue
		}
		if _, ok := backups[plan.FilePath]; ok {
			continue
		}
		data, err := os.ReadFile(plan.FilePath)
		if err != nil {
			continue
		}
		backups[plan.FilePath] = data
	}
	return backups
}

func (r *Runtime) restoreFile(path string, backups map[string][]byte) {
	data, ok := backups[path]
	if !ok {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.Logger.Printf("restore %s after rejection: %v", path, err)
	}
}

// ConfigDir returns the workspace config directory.
func (r *Runtime) ConfigDir() string {
	return agents.ConfigDir(r.Config.ProjectPath)
}

func firstOf(items []string, fallback string) string {
	if len(items) > 0 {
		return items[0]
	}
	return fallback
}
