package framework

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IssueType classifies a detected problem. Upstream detectors are free to
// emit types outside this list; specialists simply won't volunteer for them.
type IssueType string

const (
	IssueComplexity    IssueType = "complexity"
	IssueTypeError     IssueType = "type_error"
	IssueSecurity      IssueType = "security"
	IssueStyle         IssueType = "style"
	IssueDuplication   IssueType = "duplication"
	IssuePerformance   IssueType = "performance"
	IssueDocumentation IssueType = "documentation"
	IssueImportError   IssueType = "import_error"
	IssueDeadCode      IssueType = "dead_code"
)

// Priority ranks issue severity.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return "unknown"
}

// ParsePriority maps a severity label to a Priority, defaulting to low.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return PriorityCritical
	case "high":
		return PriorityHigh
	case "medium", "moderate":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// MarshalJSON emits the severity label rather than the numeric rank.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either a label or a numeric rank.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*p = ParsePriority(label)
		return nil
	}
	var rank int
	if err := json.Unmarshal(data, &rank); err != nil {
		return fmt.Errorf("severity must be a label or rank: %w", err)
	}
	if rank < int(PriorityLow) || rank > int(PriorityCritical) {
		return fmt.Errorf("severity rank %d out of range", rank)
	}
	*p = Priority(rank)
	return nil
}

// Issue is one detected code problem awaiting remediation. Values are
// immutable once created; transformations produce new values.
type Issue struct {
	ID         string    `json:"id"`
	Type       IssueType `json:"type"`
	Severity   Priority  `json:"severity"`
	Message    string    `json:"message"`
	FilePath   string    `json:"file_path,omitempty"`
	LineNumber int       `json:"line_number,omitempty"`
	Stage      string    `json:"stage,omitempty"`
}

// NewIssue builds an Issue, minting an identifier when the producer did not
// supply one.
func NewIssue(issueType IssueType, severity Priority, message string) Issue {
	return Issue{
		ID:       uuid.NewString(),
		Type:     issueType,
		Severity: severity,
		Message:  message,
	}
}

// Validate rejects issues that no stage could act on.
func (i Issue) Validate() error {
	if i.Type == "" {
		return fmt.Errorf("issue %s: type required", i.ID)
	}
	if i.LineNumber < 0 {
		return fmt.Errorf("issue %s: line number must be positive", i.ID)
	}
	return nil
}
