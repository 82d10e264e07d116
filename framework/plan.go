package framework

import (
	"errors"
	"fmt"
	"strings"
)

// RiskLevel is a coarse estimate of how likely a proposed edit is to be
// unsafe or large.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskNone:
		return "none"
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	}
	return "unknown"
}

// ParseRiskLevel maps a label to a RiskLevel, defaulting to none.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return RiskHigh
	case "medium":
		return RiskMedium
	case "low":
		return RiskLow
	}
	return RiskNone
}

// MaxRisk composes risk rules: a level never decreases once raised.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if a > b {
		return a
	}
	return b
}

// ChangeSpec is one atomic line-range textual substitution. Construction
// validates the range and old code up front; a ChangeSpec that exists is a
// ChangeSpec that can be applied.
type ChangeSpec struct {
	StartLine int
	EndLine   int
	OldCode   string
	NewCode   string
	Reason    string
}

// NewChangeSpec validates and builds a ChangeSpec.
func NewChangeSpec(start, end int, oldCode, newCode, reason string) (ChangeSpec, error) {
	if start < 1 {
		return ChangeSpec{}, fmt.Errorf("change start line %d: must be >= 1", start)
	}
	if end < start {
		return ChangeSpec{}, fmt.Errorf("change range (%d, %d): end before start", start, end)
	}
	if strings.TrimSpace(oldCode) == "" {
		return ChangeSpec{}, errors.New("change old code must not be blank")
	}
	return ChangeSpec{
		StartLine: start,
		EndLine:   end,
		OldCode:   oldCode,
		NewCode:   newCode,
		Reason:    reason,
	}, nil
}

// LineCount is the number of source lines the change replaces.
func (c ChangeSpec) LineCount() int {
	return c.EndLine - c.StartLine + 1
}

// FixPlan is a proposed, not-yet-applied set of edits addressing one issue.
// An empty Changes slice means no automatic fix was possible and the issue
// needs manual review; that is an expected outcome, not an error.
type FixPlan struct {
	FilePath    string
	IssueType   string
	Changes     []ChangeSpec
	Rationale   string
	Risk        RiskLevel
	ValidatedBy string
}

// IsHighRisk reports whether the plan was scored at the highest risk level.
func (p *FixPlan) IsHighRisk() bool {
	return p.Risk == RiskHigh
}

// IsAcceptableRisk reports whether the plan's risk is at or below threshold.
func (p *FixPlan) IsAcceptableRisk(threshold RiskLevel) bool {
	return p.Risk <= threshold
}

// EditedLines totals the lines touched across all changes.
func (p *FixPlan) EditedLines() int {
	total := 0
	for _, c := range p.Changes {
		total += c.LineCount()
	}
	return total
}
