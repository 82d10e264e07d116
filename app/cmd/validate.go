package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	runtimesvc "github.com/lexcodex/remedy/internal/remedy/runtime"
)

// newValidateCmd runs one-shot validation over a file, useful for checking
// what the pipeline would accept without running it.
func newValidateCmd() *cobra.Command {
	var runTests bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a file against the acceptance checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtimesvc.Runtime) error {
				path := args[0]
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				result := rt.Validator.ValidateFix(ctx, string(data), path, runTests)
				if result.Valid {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", path)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: rejected\n", path)
				for _, msg := range result.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", msg)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&runTests, "run-tests", false, "Also execute the file's discovered test file")
	return cmd
}
