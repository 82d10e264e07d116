// Package cmd wires the remedy CLI.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/remedy/agents"
	runtimesvc "github.com/lexcodex/remedy/internal/remedy/runtime"
)

var (
	cfgFile   string
	workspace string
	proactive bool
)

// Execute is the entry point for the CLI.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd wires the cobra tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "remedy",
		Short:         "Automated code-repair pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				workspace = wd
			}
			if cfgFile == "" {
				cfgFile = agents.DefaultConfigPath(workspace)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&workspace, "workspace", "", "Workspace directory")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to remedy config file")
	root.PersistentFlags().BoolVar(&proactive, "proactive", false, "Enable the architectural planning pre-pass")

	root.AddCommand(
		newRunCmd(),
		newAgentsCmd(),
		newHistoryCmd(),
		newValidateCmd(),
	)
	return root
}

// runWithRuntime builds a runtime from the persistent flags and tears it
// down after fn returns.
func runWithRuntime(cmd *cobra.Command, fn func(context.Context, *runtimesvc.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := runtimesvc.New(ctx, runtimesvc.Config{
		ProjectPath: workspace,
		ConfigPath:  cfgFile,
		Proactive:   proactive,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}
