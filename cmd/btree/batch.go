package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zeusync/btengine/internal/core/runner"
	"github.com/zeusync/btengine/internal/injector"
)

func newBatchCmd(root *rootOptions) *cobra.Command {
	var (
		tree      string
		scenarios []string
		workers   int
		engine    string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate one tree against many scenarios concurrently",
		Long: `Evaluate one tree against every --scenario, each on its own world.
A scenario that fails to load or aborts evaluation is reported and does not
stop the others.`,
		Example: `  btree batch --tree quest.yaml --scenario a.yaml --scenario b.yaml --workers 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := loadTree(tree)
			if err != nil {
				return err
			}
			if len(scenarios) == 0 {
				return fmt.Errorf("at least one --scenario is required")
			}
			jobs := make([]runner.Job, len(scenarios))
			for i, path := range scenarios {
				state, err := loadScenario(path)
				if err != nil {
					return err
				}
				jobs[i] = runner.Job{Name: filepath.Base(path), Tree: t, Scenario: state.Snapshot()}
			}

			return withEngine(root, func(e *injector.Engine) error {
				n := workers
				if n <= 0 {
					n = e.Config.Batch.Workers
				}
				r, err := selectRunner(cmd, e.Runner, engine)
				if err != nil {
					return err
				}
				results, err := r.RunBatch(cmd.Context(), jobs, n)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), results)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SCENARIO\tRESULT\tDIGEST")
				for _, res := range results {
					if res.Err != "" {
						fmt.Fprintf(tw, "%s\terror\t%s\n", res.Job, res.Err)
						continue
					}
					fmt.Fprintf(tw, "%s\t%t\t%s\n", res.Job, res.Report.Result, res.Report.Digest)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&tree, "tree", "", "Tree file (document or binary)")
	cmd.Flags().StringArrayVar(&scenarios, "scenario", nil, "Scenario file, repeatable")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent evaluations (default: batch.workers from config)")
	cmd.Flags().StringVar(&engine, "engine", "", "Evaluation engine: native or gobt (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}
