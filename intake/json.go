// Package intake turns external issue sources into framework.Issue values.
// Two producers are supported: JSON issue files exported by scanners, and
// live diagnostics pulled from a language server.
package intake

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/lexcodex/remedy/framework"
)

// ReadIssuesFile decodes a JSON array of issues. Entries without an
// identifier get one minted; entries that fail framework validation reject
// the whole file so a partial run never starts from a bad manifest.
func ReadIssuesFile(path string) ([]framework.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read issues file: %w", err)
	}
	return ParseIssues(data)
}

// ParseIssues decodes raw JSON into validated issues.
func ParseIssues(data []byte) ([]framework.Issue, error) {
	var issues []framework.Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	for i := range issues {
		if issues[i].ID == "" {
			issues[i].ID = uuid.NewString()
		}
		if issues[i].Severity == 0 {
			issues[i].Severity = framework.PriorityLow
		}
		if err := issues[i].Validate(); err != nil {
			return nil, fmt.Errorf("issue %d: %w", i, err)
		}
	}
	return issues, nil
}
