package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/btengine/internal/core/bt"
)

func newEncodeCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Convert a tree between document and binary form",
		Long: `Read a tree and write it to --out. The output form follows the --out
extension: .yaml/.yml/.json produce a document, anything else the binary encoding.`,
		Example: `  btree encode --in quest.yaml --out quest.bt
  btree encode --in quest.bt --out quest.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			root, err := loadTree(in)
			if err != nil {
				return err
			}
			if err := writeTree(out, root); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d nodes to %s\n", bt.Count(root), out)
			return err
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Source tree file")
	cmd.Flags().StringVar(&out, "out", "", "Destination file")
	return cmd
}
