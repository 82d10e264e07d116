package agents

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lexcodex/remedy/framework"
)

// CoordinatorConfig holds tuning parameters for the coordinator.
type CoordinatorConfig struct {
	// MaxConcurrent bounds how many issues are dispatched at once.
	MaxConcurrent int
	// Proactive enables the architectural planning pre-pass.
	Proactive bool
}

// Coordinator is the top-level entry point for reactive dispatch: it selects
// the most confident eligible specialist per issue and folds every outcome,
// including downgraded defects, into one merged result. Dependencies are
// injected; the coordinator owns no global state.
type Coordinator struct {
	registry *Registry
	tracker  *Tracker
	agentCtx *framework.AgentContext
	logger   *log.Logger
	Config   CoordinatorConfig

	mu          sync.Mutex
	specialists []framework.SubAgent
}

// NewCoordinator wires a coordinator to its registry and tracker.
func NewCoordinator(registry *Registry, tracker *Tracker, agentCtx *framework.AgentContext, cfg CoordinatorConfig) *Coordinator {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	return &Coordinator{
		registry: registry,
		tracker:  tracker,
		agentCtx: agentCtx,
		logger:   log.Default(),
		Config:   cfg,
	}
}

// SetLogger overrides the default logger.
func (c *Coordinator) SetLogger(logger *log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Specialists returns the live specialist list, initializing it from the
// registry on first use. Re-initialization never runs concurrently with
// in-flight dispatch; the lock covers both.
func (c *Coordinator) Specialists() ([]framework.SubAgent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.specialists != nil {
		return c.specialists, nil
	}
	specialists, err := c.registry.CreateAll(c.agentCtx)
	if err != nil {
		return nil, fmt.Errorf("initialize specialists: %w", err)
	}
	c.specialists = specialists
	return specialists, nil
}

// HandleIssues groups issues by type and dispatches each to its best
// specialist concurrently. Every submitted issue contributes exactly one
// entry to the merged result; per-issue failures never propagate as errors.
func (c *Coordinator) HandleIssues(ctx context.Context, issues []framework.Issue) (*framework.FixResult, error) {
	specialists, err := c.Specialists()
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return &framework.FixResult{Success: true, Confidence: 1}, nil
	}

	if c.Config.Proactive {
		c.runProactivePlanning(ctx, issues, specialists)
	}

	results := make([]framework.FixResult, len(issues))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.Config.MaxConcurrent)

	// groupIssuesByType retains input positions so results land in order.
	for _, grouped := range groupIssuesByType(issues) {
		eligible := eligibleFor(specialists, grouped.issueType)
		for _, entry := range grouped.entries {
			issue := entry.issue
			idx := entry.index
			if len(eligible) == 0 {
				results[idx] = *framework.FixFailure(fmt.Sprintf(
					"no specialist registered for issue type %q (issue %s)", grouped.issueType, issue.ID))
				continue
			}
			group.Go(func() error {
				results[idx] = c.dispatchIssue(groupCtx, issue, eligible)
				return nil
			})
		}
	}
	// Worker funcs never return errors; Wait only synchronizes.
	_ = group.Wait()

	merged := framework.FixResult{Success: true, Confidence: 1}
	for _, res := range results {
		merged = merged.Merge(res)
	}
	return &merged, nil
}

// dispatchIssue selects the most confident specialist and runs the fix,
// downgrading panics and errors to failure results.
func (c *Coordinator) dispatchIssue(ctx context.Context, issue framework.Issue, eligible []framework.SubAgent) (result framework.FixResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Printf("coordinator: panic fixing issue %s (%s): %v", issue.ID, issue.Type, r)
			result = *framework.FixFailure(fmt.Sprintf("specialist panic on issue %s: %v", issue.ID, r))
		}
	}()

	winner, confidence := c.selectSpecialist(issue, eligible)
	if winner == nil {
		return *framework.FixFailure(fmt.Sprintf("no specialist volunteered for issue %s (%s)", issue.ID, issue.Type))
	}

	started := time.Now()
	res, err := winner.AnalyzeAndFix(ctx, issue)
	elapsed := time.Since(started)
	if err != nil {
		c.tracker.RecordAttempt(winner.Name(), false, elapsed)
		c.logger.Printf("coordinator: specialist %s failed on issue %s (file=%s): %v",
			winner.Name(), issue.ID, issue.FilePath, err)
		c.agentCtx.Emit(framework.Event{
			Type: framework.EventSpecialistError, IssueID: issue.ID, File: issue.FilePath,
			Stage: "coordinator", Message: err.Error(),
		})
		return *framework.FixFailure(fmt.Sprintf("specialist %s failed on issue %s: %v", winner.Name(), issue.ID, err))
	}
	if res == nil {
		res = framework.FixFailure(fmt.Sprintf("specialist %s returned no result for issue %s", winner.Name(), issue.ID))
	}
	if res.Confidence == 0 {
		res.Confidence = confidence
	}
	c.tracker.RecordAttempt(winner.Name(), res.Success, elapsed)
	return *res
}

// selectSpecialist queries every eligible specialist's confidence
// concurrently and folds to the strict maximum. Confidence errors count as
// zero; ties resolve to the earliest-registered specialist.
func (c *Coordinator) selectSpecialist(issue framework.Issue, eligible []framework.SubAgent) (framework.SubAgent, float64) {
	scores := make([]float64, len(eligible))
	var wg sync.WaitGroup
	for i, specialist := range eligible {
		i, specialist := i, specialist
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					c.logger.Printf("coordinator: %s.CanHandle panic on issue %s: %v", specialist.Name(), issue.ID, r)
					scores[i] = 0
				}
			}()
			score, err := specialist.CanHandle(issue)
			if err != nil {
				c.logger.Printf("coordinator: %s.CanHandle failed on issue %s: %v", specialist.Name(), issue.ID, err)
				scores[i] = 0
				return
			}
			scores[i] = clamp01(score)
		}()
	}
	wg.Wait()

	var winner framework.SubAgent
	best := 0.0
	for i, specialist := range eligible {
		if scores[i] > best {
			best = scores[i]
			winner = specialist
		}
	}
	return winner, best
}

type indexedIssue struct {
	index int
	issue framework.Issue
}

type issueGroup struct {
	issueType framework.IssueType
	entries   []indexedIssue
}

// groupIssuesByType buckets issues preserving both the first-seen order of
// types and each issue's position in the input batch.
func groupIssuesByType(issues []framework.Issue) []issueGroup {
	index := make(map[framework.IssueType]int)
	var groups []issueGroup
	for i, issue := range issues {
		pos, seen := index[issue.Type]
		if !seen {
			pos = len(groups)
			index[issue.Type] = pos
			groups = append(groups, issueGroup{issueType: issue.Type})
		}
		groups[pos].entries = append(groups[pos].entries, indexedIssue{index: i, issue: issue})
	}
	return groups
}

func eligibleFor(specialists []framework.SubAgent, issueType framework.IssueType) []framework.SubAgent {
	var eligible []framework.SubAgent
	for _, s := range specialists {
		if framework.Supports(s, issueType) {
			eligible = append(eligible, s)
		}
	}
	return eligible
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
