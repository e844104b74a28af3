package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bhaveshprodev/OhOnePro/internal/clipboard"
	"github.com/bhaveshprodev/OhOnePro/internal/config"
	"github.com/bhaveshprodev/OhOnePro/internal/dropzone"
	"github.com/bhaveshprodev/OhOnePro/internal/parser"
	"github.com/bhaveshprodev/OhOnePro/internal/pipeline"
	"github.com/spf13/cobra"
)

type copyFlags struct {
	stdout  bool
	out     string
	mode    string
	exclude []string
	hidden  bool
}

func newCopyCmd(cfg config.Config, log *slog.Logger, clip clipboard.Sink) *cobra.Command {
	var f copyFlags

	cmd := &cobra.Command{
		Use:   "copy [paths...]",
		Short: "Copy files or one folder as an XML document",
		Long: `Copy reads every named file, or every file under a single named folder,
and writes the resulting XML document to the clipboard. Loose files are
listed flat; a folder keeps its hierarchy under a <folder> wrapper.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.stdout && f.out != "" {
				return fmt.Errorf("--stdout and --out are mutually exclusive")
			}

			run := cfg
			if cmd.Flags().Changed("mode") {
				mode, err := parser.ParseMode(f.mode)
				if err != nil {
					return err
				}
				run.ExtractMode = mode
			}
			if f.hidden {
				run.IncludeHidden = true
			}
			run.Exclude = append(append([]string(nil), run.Exclude...), f.exclude...)

			sink := clip
			switch {
			case f.stdout:
				sink = clipboard.WriterSink{W: cmd.OutOrStdout()}
			case f.out != "":
				sink = clipboard.FileSink{Path: f.out}
			}

			zone := dropzone.New(run, sink, log)
			ctx := cmd.Context()
			stderr := cmd.ErrOrStderr()

			for _, arg := range args {
				info, err := os.Stat(arg)
				if err != nil {
					return fmt.Errorf("stat %s: %w", arg, err)
				}
				var batch *pipeline.Batch
				if info.IsDir() {
					batch, err = zone.AddFolder(ctx, arg)
				} else {
					batch, err = zone.AddFiles(ctx, arg)
				}
				if err != nil {
					return err
				}
				for _, fail := range batch.Failures() {
					fmt.Fprintf(stderr, "skipped %s\n", fail)
				}
			}

			if err := zone.Copy(ctx); err != nil {
				return err
			}
			fmt.Fprintf(stderr, "copied %s\n", zone.Summary())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&f.stdout, "stdout", false, "write the document to stdout instead of the clipboard")
	flags.StringVarP(&f.out, "out", "o", "", "write the document to `file` instead of the clipboard")
	flags.StringVar(&f.mode, "mode", string(cfg.ExtractMode), "text extraction mode: raw or plain")
	flags.StringSliceVarP(&f.exclude, "exclude", "x", nil, "glob `pattern` of paths to leave out (repeatable)")
	flags.BoolVar(&f.hidden, "hidden", false, "include dot-files and dot-directories")
	return cmd
}
