package main

import (
	"github.com/spf13/cobra"

	"github.com/khoahotran/auto-featured-image/internal/application/usecase/featured"
)

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Assign featured images to published posts that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := ctx.backfillUseCase(cmd.Context())
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), featured.BackfillInput{Limit: limit, DryRun: dryRun})
			if out != nil {
				if werr := writeJSON(cmd, out); werr != nil && err == nil {
					err = werr
				}
			}
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of posts to process")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve without writing thumbnails")
	return cmd
}
