package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexcodex/remedy/agents"
	"github.com/lexcodex/remedy/framework"
)

// newAgentsCmd lists the registered specialists and the routing hints.
func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List registered specialists",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := agents.DefaultRegistry()
			specialists, err := registry.CreateAll(framework.NewAgentContext(workspace))
			if err != nil {
				return err
			}
			for _, specialist := range specialists {
				types := make([]string, 0, len(specialist.SupportedTypes()))
				for issueType := range specialist.SupportedTypes() {
					types = append(types, string(issueType))
				}
				sort.Strings(types)
				fmt.Fprintf(cmd.OutOrStdout(), "%s · handles %s\n", specialist.Name(), strings.Join(types, ", "))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\nRouting hints:")
			hints := make([]string, 0, len(agents.PreferredSpecialists))
			for issueType, preferred := range agents.PreferredSpecialists {
				hints = append(hints, fmt.Sprintf("  %s → %s", issueType, strings.Join(preferred, ", ")))
			}
			sort.Strings(hints)
			for _, hint := range hints {
				fmt.Fprintln(cmd.OutOrStdout(), hint)
			}
			return nil
		},
	}
}
