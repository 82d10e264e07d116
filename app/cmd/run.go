package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/remedy/framework"
	"github.com/lexcodex/remedy/intake"
	runtimesvc "github.com/lexcodex/remedy/internal/remedy/runtime"
)

// newRunCmd wires the `run` command: the full pipeline over an issues file
// or live LSP diagnostics.
func newRunCmd() *cobra.Command {
	var issuesFile string
	var lspFiles []string
	var direct bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the repair pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtimesvc.Runtime) error {
				issues, err := collectIssues(ctx, rt, issuesFile, lspFiles)
				if err != nil {
					return err
				}
				if len(issues) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No issues to repair.")
					return nil
				}
				if direct {
					res, err := rt.Dispatch(ctx, issues)
					if err != nil {
						return err
					}
					fmt.Fprint(cmd.OutOrStdout(), renderDispatchResult(res))
					return nil
				}
				report, err := rt.Run(ctx, issues)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderRunReport(report))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&issuesFile, "issues", "", "JSON issues file")
	cmd.Flags().StringSliceVar(&lspFiles, "lsp-file", nil, "Collect diagnostics for this file from the configured language server (repeatable)")
	cmd.Flags().BoolVar(&direct, "direct", false, "Dispatch issues straight to specialists, skipping the planning stage")
	return cmd
}

// collectIssues merges the JSON file source with LSP diagnostics for the
// requested files.
func collectIssues(ctx context.Context, rt *runtimesvc.Runtime, issuesFile string, lspFiles []string) ([]framework.Issue, error) {
	var issues []framework.Issue
	if issuesFile != "" {
		fromFile, err := intake.ReadIssuesFile(issuesFile)
		if err != nil {
			return nil, err
		}
		issues = append(issues, fromFile...)
	}
	if len(lspFiles) > 0 {
		lspCfg := rt.Pipeline.Intake
		if len(lspCfg.LSPCommand) == 0 {
			return nil, fmt.Errorf("intake.lsp_command not configured")
		}
		client, err := intake.NewLSPIntake(intake.LSPConfig{
			Command:         lspCfg.LSPCommand[0],
			Args:            lspCfg.LSPCommand[1:],
			RootDir:         rt.Config.ProjectPath,
			LanguageID:      lspCfg.LSPLanguageID,
			DiagnosticsWait: 5 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("start language server: %w", err)
		}
		defer client.Close()
		fromLSP, err := client.CollectIssues(ctx, lspFiles...)
		if err != nil {
			return nil, err
		}
		issues = append(issues, fromLSP...)
	}
	return issues, nil
}
