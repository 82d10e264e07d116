package agents

import (
	"context"

	"github.com/lexcodex/remedy/framework"
)

// ArchitecturalPlan is the cross-issue strategy a planning specialist can
// produce before reactive dispatch.
type ArchitecturalPlan struct {
	Strategy        string
	Patterns        []string
	ValidationSteps []string
}

// ArchitecturalPlanner is the optional capability behind proactive mode.
// Specialists that implement it are consulted for architecturally
// significant issue groups.
type ArchitecturalPlanner interface {
	PlanArchitecture(ctx context.Context, issues []framework.Issue) (*ArchitecturalPlan, error)
}

// architectural issue types get a planning pre-pass when proactive mode is on.
var architecturalTypes = map[framework.IssueType]bool{
	framework.IssueComplexity:  true,
	framework.IssueDuplication: true,
	framework.IssuePerformance: true,
}

// runProactivePlanning asks the first planner-capable specialist for a
// strategy covering the architecturally significant issues. Planning is an
// optimization only: a missing planner or a planning failure falls straight
// through to the reactive path.
func (c *Coordinator) runProactivePlanning(ctx context.Context, issues []framework.Issue, specialists []framework.SubAgent) *ArchitecturalPlan {
	var significant []framework.Issue
	for _, issue := range issues {
		if architecturalTypes[issue.Type] {
			significant = append(significant, issue)
		}
	}
	if len(significant) == 0 {
		return nil
	}

	var planner ArchitecturalPlanner
	for _, s := range specialists {
		if p, ok := s.(ArchitecturalPlanner); ok {
			planner = p
			break
		}
	}
	if planner == nil {
		c.agentCtx.Emit(framework.Event{
			Type: framework.EventProactiveFallthrough, Stage: "coordinator",
			Message: "no architectural planner registered",
		})
		return nil
	}

	plan, err := planner.PlanArchitecture(ctx, significant)
	if err != nil || plan == nil {
		if err != nil {
			c.logger.Printf("coordinator: architectural planning failed, continuing reactively: %v", err)
		}
		c.agentCtx.Emit(framework.Event{
			Type: framework.EventProactiveFallthrough, Stage: "coordinator",
		})
		return nil
	}
	c.agentCtx.Emit(framework.Event{
		Type: framework.EventProactivePlan, Stage: "coordinator", Message: plan.Strategy,
		Metadata: map[string]any{"patterns": plan.Patterns, "issues": len(significant)},
	})
	return plan
}
