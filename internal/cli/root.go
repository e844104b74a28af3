// Package cli wires the ohonepro commands.
package cli

import (
	"log/slog"

	"github.com/bhaveshprodev/OhOnePro/internal/clipboard"
	"github.com/bhaveshprodev/OhOnePro/internal/config"
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// NewRootCmd builds the command tree. clip is the sink used by copy when
// neither --stdout nor --out is given.
func NewRootCmd(cfg config.Config, log *slog.Logger, clip clipboard.Sink) *cobra.Command {
	root := &cobra.Command{
		Use:   "ohonepro",
		Short: "Copy files and folders to the clipboard as one XML document",
		Long: `ohonepro extracts the text of the files and folders you name, rebuilds the
folder hierarchy and copies a pretty-printed XML document to the clipboard,
ready to paste into a chat with a language model.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newCopyCmd(cfg, log, clip),
		newInspectCmd(),
		newVersionCmd(),
	)
	return root
}
