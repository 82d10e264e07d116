package analysis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lexcodex/remedy/framework"
	"github.com/lexcodex/remedy/framework/syntax"
)

// FallbackValidatedBy tags plans produced by the deterministic fallback path
// so downstream stages and auditing can tell them apart.
const FallbackValidatedBy = "analysis-fallback"

// Options tunes a Planner.
type Options struct {
	// Window is the number of context lines taken either side of the issue.
	Window int
	// MaxConcurrent bounds batch analysis concurrency.
	MaxConcurrent int
	// Strategies overrides the default strategy set.
	Strategies map[string]Strategy
}

// Planner turns Issues into FixPlans.
type Planner struct {
	agentCtx   *framework.AgentContext
	strategies map[string]Strategy
	window     int
	limit      int
	logger     *log.Logger
}

// NewPlanner builds a planner bound to the run context.
func NewPlanner(agentCtx *framework.AgentContext, opts Options) *Planner {
	if opts.Window <= 0 {
		opts.Window = 20
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.Strategies == nil {
		opts.Strategies = DefaultStrategies()
	}
	return &Planner{
		agentCtx:   agentCtx,
		strategies: opts.Strategies,
		window:     opts.Window,
		limit:      opts.MaxConcurrent,
		logger:     log.Default(),
	}
}

// AnalyzeIssue produces a plan for one issue. Callers treat a returned error
// as an internal analysis failure and substitute FallbackPlan.
func (p *Planner) AnalyzeIssue(ctx context.Context, issue framework.Issue) (*framework.FixPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.agentCtx.Emit(framework.Event{
		Type: framework.EventAnalysisStart, IssueID: issue.ID, File: issue.FilePath, Stage: "analysis",
	})

	fc := ExtractContext(issue.FilePath, issue.LineNumber, p.window)
	warnings := DetectAntiPatterns(fc)
	approach := DetermineApproach(issue.Type, warnings)

	plan := &framework.FixPlan{
		FilePath:    issue.FilePath,
		IssueType:   string(issue.Type),
		Rationale:   p.rationale(issue, approach, warnings),
		ValidatedBy: "analysis",
	}

	strategy := p.strategyFor(approach)
	if strategy != nil {
		change, err := strategy.Propose(fc, issue)
		if err != nil {
			return nil, fmt.Errorf("strategy %s on issue %s: %w", strategy.Name(), issue.ID, err)
		}
		if change != nil {
			if err := p.checkChange(fc, *change); err != nil {
				p.logger.Printf("analysis: discarding change for issue %s (%s): %v", issue.ID, issue.FilePath, err)
				p.agentCtx.Emit(framework.Event{
					Type: framework.EventChangeDiscarded, IssueID: issue.ID, File: issue.FilePath,
					Stage: "analysis", Message: err.Error(),
				})
			} else {
				plan.Changes = append(plan.Changes, *change)
			}
		}
	}

	plan.Risk = AssessRisk(warnings, plan.EditedLines(), issue.Severity)
	p.agentCtx.Emit(framework.Event{
		Type: framework.EventPlanReady, IssueID: issue.ID, File: issue.FilePath, Stage: "analysis",
		Metadata: map[string]any{"changes": len(plan.Changes), "risk": plan.Risk.String()},
	})
	return plan, nil
}

// AnalyzeIssues analyzes a batch under the configured concurrency bound.
// The returned slice always has exactly one plan per input issue, in input
// order; issues whose analysis failed get the fallback plan.
func (p *Planner) AnalyzeIssues(ctx context.Context, issues []framework.Issue) []*framework.FixPlan {
	plans := make([]*framework.FixPlan, len(issues))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.limit)

	for i, issue := range issues {
		i, issue := i, issue
		group.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Printf("analysis: panic on issue %s: %v", issue.ID, r)
					plans[i] = p.FallbackPlan(issue, fmt.Errorf("panic: %v", r))
				}
			}()
			plan, err := p.AnalyzeIssue(groupCtx, issue)
			if err != nil {
				plans[i] = p.FallbackPlan(issue, err)
				return nil
			}
			plans[i] = plan
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = group.Wait()
	return plans
}

// FallbackPlan is the deterministic stand-in produced when analysis itself
// failed: it quotes the offending line, demands manual review, and carries
// the highest risk level so nothing downstream auto-applies it.
func (p *Planner) FallbackPlan(issue framework.Issue, cause error) *framework.FixPlan {
	line := "<line unavailable>"
	if issue.FilePath != "" && issue.LineNumber > 0 {
		if data, err := os.ReadFile(issue.FilePath); err == nil {
			if l := framework.ReadLine(string(data), issue.LineNumber); l != "" {
				line = l
			}
		}
	}
	p.agentCtx.Emit(framework.Event{
		Type: framework.EventPlanFallback, IssueID: issue.ID, File: issue.FilePath, Stage: "analysis",
		Message: cause.Error(),
	})
	return &framework.FixPlan{
		FilePath:  issue.FilePath,
		IssueType: string(issue.Type),
		Rationale: fmt.Sprintf("analysis failed (%v); manual review required for line %d: %s",
			cause, issue.LineNumber, strings.TrimSpace(line)),
		Risk:        framework.RiskHigh,
		ValidatedBy: FallbackValidatedBy,
	}
}

// strategyFor resolves an approach name, falling back from the cautious
// variant to its base strategy.
func (p *Planner) strategyFor(approach string) Strategy {
	if s, ok := p.strategies[approach]; ok {
		return s
	}
	if s, ok := p.strategies[BaseApproach(approach)]; ok {
		return s
	}
	return nil
}

// checkChange verifies a proposed change structurally before it is accepted
// into the plan: the patched file must keep balanced nesting and, for Go
// sources, still parse.
func (p *Planner) checkChange(fc FileContext, change framework.ChangeSpec) error {
	if err := syntax.BalancedDelta(change.OldCode, change.NewCode); err != nil {
		return err
	}
	if !fc.Exists {
		return fmt.Errorf("file %s not readable for verification", fc.Path)
	}
	patched, err := framework.ApplyChange(fc.Content, change)
	if err != nil {
		return err
	}
	return syntax.Check(patched, fc.Path)
}

func (p *Planner) rationale(issue framework.Issue, approach string, warnings []string) string {
	base := fmt.Sprintf("approach %q for %s issue %s", approach, issue.Type, issue.ID)
	if len(warnings) == 0 {
		return base
	}
	return base + "; warnings: " + strings.Join(warnings, "; ")
}
