package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zeusync/btengine/internal/core/runner"
	"github.com/zeusync/btengine/internal/core/world"
	"github.com/zeusync/btengine/internal/injector"
)

type runOptions struct {
	tree     string
	scenario string
	engine   string
	debug    bool
	json     bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a tree once against a scenario",
		Long: `Evaluate a tree once against a scenario and print the result, the
resulting world and its digest. Without --scenario the castle scenario is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := loadTree(opts.tree)
			if err != nil {
				return err
			}
			state, err := loadScenario(opts.scenario)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				state.Debug = opts.debug
			}

			return withEngine(root, func(e *injector.Engine) error {
				r, err := selectRunner(cmd, e.Runner, opts.engine)
				if err != nil {
					return err
				}
				rep, err := r.Run(cmd.Context(), tree, state)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), rep)
				}
				return printReport(cmd.OutOrStdout(), rep, state)
			})
		},
	}
	cmd.Flags().StringVar(&opts.tree, "tree", "", "Tree file (document or binary)")
	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "Scenario file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "Evaluation engine: native or gobt (default from config)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Override the scenario's debug flag")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the full report as JSON")
	return cmd
}

// selectRunner applies --engine over the configured engine.
func selectRunner(cmd *cobra.Command, r *runner.Runner, engine string) (*runner.Runner, error) {
	if !cmd.Flags().Changed("engine") {
		return r, nil
	}
	e, err := runner.ParseEngine(engine)
	if err != nil {
		return nil, err
	}
	return r.WithEngine(e), nil
}

func printReport(w io.Writer, rep *runner.Report, after *world.State) error {
	for _, line := range rep.Trace {
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Result: %t\n%sDigest: %s\n", rep.Result, after, rep.Digest)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
