package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/remedy/framework"
	runtimesvc "github.com/lexcodex/remedy/internal/remedy/runtime"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	acceptedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	reportBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// renderRunReport renders the pipeline summary for the terminal.
func renderRunReport(report *runtimesvc.RunReport) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("remedy run "+report.RunID) + "\n")
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		acceptedStyle.Render(fmt.Sprintf("accepted %d", report.Accepted)),
		rejectedStyle.Render(fmt.Sprintf("rejected %d", report.Rejected)),
		dimStyle.Render(fmt.Sprintf("fallbacks %d · %s", report.Fallbacks, report.Duration.Round(time.Millisecond)))))

	for _, out := range report.Outcomes {
		marker := rejectedStyle.Render("✗")
		if out.Accepted {
			marker = acceptedStyle.Render("✓")
		}
		line := fmt.Sprintf("%s %s %s", marker, out.IssueType, out.FilePath)
		if out.Detail != "" {
			line += dimStyle.Render(" · " + out.Detail)
		}
		b.WriteString(line + "\n")
	}

	if len(report.Specialists) > 0 {
		b.WriteString(titleStyle.Render("specialists") + "\n")
		names := make([]string, 0, len(report.Specialists))
		for name := range report.Specialists {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			activity := report.Specialists[name]
			b.WriteString(dimStyle.Render(fmt.Sprintf("%s: %d attempts, %d successes, %s total",
				name, activity.Attempts, activity.Successes, activity.TotalElapsed.Round(time.Millisecond))) + "\n")
		}
	}
	return reportBox.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

// renderDispatchResult renders the merged result of a direct dispatch.
func renderDispatchResult(res *framework.FixResult) string {
	var b strings.Builder
	status := rejectedStyle.Render("failed")
	if res.Success {
		status = acceptedStyle.Render("succeeded")
	}
	b.WriteString(titleStyle.Render("dispatch "+status) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("confidence %.2f", res.Confidence)) + "\n")
	for _, fix := range res.FixesApplied {
		b.WriteString(acceptedStyle.Render("+ ") + fix + "\n")
	}
	for _, remaining := range res.RemainingIssues {
		b.WriteString(rejectedStyle.Render("! ") + remaining + "\n")
	}
	for _, rec := range res.Recommendations {
		b.WriteString(dimStyle.Render("> "+rec) + "\n")
	}
	return reportBox.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}
