package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/bhaveshprodev/OhOnePro/internal/doctree"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [FILE|-]",
		Short: "List the files inside a copied XML document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open document: %w", err)
				}
				defer f.Close()
				r = f
			}

			root, entries, err := doctree.Decode(r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root != "" {
				fmt.Fprintf(out, "%s/\n", root)
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s (%d bytes)\n", e.Path, len(e.Content))
			}
			return nil
		},
	}
}
