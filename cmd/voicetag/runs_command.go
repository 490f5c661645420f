package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"voicetag/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent processing runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("run history is disabled in the configuration")
			}

			history, err := store.Open(cmd.Context(), cfg.History.Path)
			if err != nil {
				return err
			}
			defer history.Close()

			runs, err := history.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				detail := strconv.Itoa(run.SpeakerCount) + " speakers"
				if run.Status == store.StatusFailed {
					detail = run.Error
				}
				rows = append(rows, []string{
					run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					filepath.Base(run.Source),
					string(run.Status),
					detail,
					strconv.Itoa(run.UtteranceCount),
					fmt.Sprintf("%.1fs", run.TotalDuration),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Recording", "Status", "Detail", "Utterances", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}
