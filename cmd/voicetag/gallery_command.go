package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGalleryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "gallery",
		Short: "List enrolled identities and their reference samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := ctx.loadGallery(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if g.Len() == 0 {
				cfg, _ := ctx.ensureConfig()
				fmt.Fprintf(out, "No enrolled identities (reference directory: %s)\n", cfg.Paths.ReferenceDir)
				return nil
			}

			rows := make([][]string, 0, g.Len())
			for _, profile := range g.Profiles() {
				rows = append(rows, []string{
					profile.Name,
					strconv.Itoa(len(profile.Embeddings)),
					strconv.Itoa(len(profile.Features)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Identity", "Embeddings", "Feature Vectors"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}
