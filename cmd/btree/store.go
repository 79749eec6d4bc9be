package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/injector"
)

func newStoreCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage trees in the configured store",
		Long: `Save, load, list and delete trees in the store selected by the
config's store section (a directory of compressed files, or SQLite).`,
	}
	cmd.AddCommand(newStoreSaveCmd(root))
	cmd.AddCommand(newStoreLoadCmd(root))
	cmd.AddCommand(newStoreListCmd(root))
	cmd.AddCommand(newStoreDeleteCmd(root))
	return cmd
}

func newStoreSaveCmd(root *rootOptions) *cobra.Command {
	var tree string
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Store a tree under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTree(tree)
			if err != nil {
				return err
			}
			return withApp(root, func(app *injector.App) error {
				if err := app.Store.Save(cmd.Context(), args[0], t); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d nodes)\n", args[0], bt.Count(t))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&tree, "tree", "", "Tree file (document or binary)")
	return cmd
}

func newStoreLoadCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Print a stored tree or write it to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(root, func(app *injector.App) error {
				t, err := app.Store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if out != "" {
					return writeTree(out, t)
				}
				return bt.Export(t).WriteYAML(cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout")
	return cmd
}

func newStoreListCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(root, func(app *injector.App) error {
				entries, err := app.Store.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), entries)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tVERSION\tDIGEST\tSIZE\tUPDATED")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n", e.Name, e.Version, e.Digest, e.Size, e.UpdatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newStoreDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(root, func(app *injector.App) error {
				if err := app.Store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return err
			})
		},
	}
}
