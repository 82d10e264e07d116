package analysis

import (
	"strings"

	"github.com/lexcodex/remedy/framework"
)

// CautiousSuffix marks an approach whose file showed high-risk warnings;
// strategies treat suffixed approaches as "propose less, defer more".
const CautiousSuffix = "-cautious"

// approachByType is the fixed issue-type → approach mapping. Unknown types
// fall back to the generic approach.
var approachByType = map[framework.IssueType]string{
	framework.IssueComplexity:    "simplify",
	framework.IssueTypeError:     "retype",
	framework.IssueSecurity:      "harden",
	framework.IssueStyle:         "restyle",
	framework.IssueDuplication:   "deduplicate",
	framework.IssuePerformance:   "optimize",
	framework.IssueDocumentation: "document",
	framework.IssueImportError:   "reimport",
	framework.IssueDeadCode:      "prune",
}

const genericApproach = "generic"

// highRiskKeywords escalate an approach to cautious handling when they show
// up in any anti-pattern warning.
var highRiskKeywords = []string{"duplicate", "unclosed", "incomplete", "syntax error"}

// DetermineApproach maps the issue type to its approach name, suffixing it
// when warnings indicate the file is already structurally suspect.
func DetermineApproach(issueType framework.IssueType, warnings []string) string {
	approach, ok := approachByType[issueType]
	if !ok {
		approach = genericApproach
	}
	for _, warning := range warnings {
		lowered := strings.ToLower(warning)
		for _, keyword := range highRiskKeywords {
			if strings.Contains(lowered, keyword) {
				return approach + CautiousSuffix
			}
		}
	}
	return approach
}

// BaseApproach strips the cautious suffix so strategy lookup can fall back
// to the base strategy when no cautious variant is registered.
func BaseApproach(approach string) string {
	return strings.TrimSuffix(approach, CautiousSuffix)
}
