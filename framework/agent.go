package framework

import (
	"context"
	"strings"
)

// SubAgent is a pluggable specialist capable of evaluating and fixing issues
// of its declared types. Implementations register constructors with the
// agents registry; the pipeline only ever talks to this interface.
type SubAgent interface {
	// Name identifies the specialist in logs, metrics, and the registry.
	Name() string

	// CanHandle scores the specialist's confidence for an issue in [0, 1].
	// It must be side-effect free. Callers treat an error as confidence 0.
	CanHandle(issue Issue) (float64, error)

	// AnalyzeAndFix attempts to resolve the issue. Expected failure modes
	// are encoded in the result (Success=false), never returned as errors;
	// a returned error is a defect and is caught one layer up.
	AnalyzeAndFix(ctx context.Context, issue Issue) (*FixResult, error)

	// SupportedTypes is the authoritative set of issue types this
	// specialist handles. Static per instance.
	SupportedTypes() map[IssueType]bool
}

// PlanExecutor is an optional capability: specialists that implement it
// receive FixPlans directly instead of synthesized issues.
type PlanExecutor interface {
	ExecuteFixPlan(ctx context.Context, plan *FixPlan) (*FixResult, error)
}

// Supports reports whether the agent declares the given type, matching
// case-insensitively the way plan routing does.
func Supports(agent SubAgent, issueType IssueType) bool {
	types := agent.SupportedTypes()
	if types[issueType] {
		return true
	}
	for t := range types {
		if strings.EqualFold(string(t), string(issueType)) {
			return true
		}
	}
	return false
}
