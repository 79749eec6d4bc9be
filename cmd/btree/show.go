package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/world"
)

func newShowCmd() *cobra.Command {
	var (
		tree   string
		asYAML bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := loadTree(tree)
			if err != nil {
				return err
			}
			if asYAML {
				return bt.Export(root).WriteYAML(cmd.OutOrStdout())
			}
			_, err = io.WriteString(cmd.OutOrStdout(), bt.Format(root))
			return err
		},
	}
	cmd.Flags().StringVar(&tree, "tree", "", "Tree file (document or binary)")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print as a YAML document")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	var (
		from   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Print a scenario document",
		Long: `Print a scenario as a document. Without --from the built-in castle
scenario is printed, which makes a starting point for new scenarios.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := loadScenario(from)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), state.Snapshot())
			}
			return world.WriteYAML(cmd.OutOrStdout(), state)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Scenario file to normalize")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
