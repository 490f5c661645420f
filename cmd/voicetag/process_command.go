package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var formats []string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "process <audio-file-or-directory>",
		Short: "Transcribe a recording and label who said what",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			info, err := os.Stat(target)
			if err != nil {
				return fmt.Errorf("stat %s: %w", target, err)
			}

			runner, history, err := ctx.newRunner(cmd.Context(), formats, outputDir)
			if err != nil {
				return err
			}
			defer func() {
				if history != nil {
					_ = history.Close()
				}
			}()

			out := cmd.OutOrStdout()
			if !info.IsDir() {
				summary, err := runner.ProcessFile(cmd.Context(), target)
				if err != nil {
					return err
				}
				printSummary(out, summary.Source, summary.Speakers, len(summary.Utterances), summary.OutputPaths)
				return nil
			}

			batch, err := runner.ProcessDirectory(cmd.Context(), target)
			if err != nil {
				return err
			}
			for _, summary := range batch.Summaries {
				printSummary(out, summary.Source, summary.Speakers, len(summary.Utterances), summary.OutputPaths)
			}
			if len(batch.Failed) > 0 {
				failed := make([]string, 0, len(batch.Failed))
				for path := range batch.Failed {
					failed = append(failed, path)
				}
				sort.Strings(failed)
				for _, path := range failed {
					fmt.Fprintf(out, "FAILED %s: %v\n", path, batch.Failed[path])
				}
				return fmt.Errorf("%d of %d recordings failed", len(batch.Failed), len(batch.Failed)+len(batch.Summaries))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&formats, "formats", nil, "Output formats (json, txt, csv, summary); defaults to the configured set")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory; defaults to the configured one")
	return cmd
}

func printSummary(out io.Writer, source string, speakers, utterances int, paths map[string]string) {
	fmt.Fprintf(out, "%s: %d speakers, %d utterances\n", source, speakers, utterances)
	formats := make([]string, 0, len(paths))
	for format := range paths {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	for _, format := range formats {
		fmt.Fprintf(out, "  %s: %s\n", format, paths[format])
	}
}
