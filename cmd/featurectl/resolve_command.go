package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/khoahotran/auto-featured-image/internal/application/usecase/featured"
)

type resolveResult struct {
	PostID       string `json:"post_id"`
	Assigned     bool   `json:"assigned"`
	AttachmentID string `json:"attachment_id,omitempty"`
	Taxonomy     string `json:"taxonomy,omitempty"`
	Slug         string `json:"slug,omitempty"`
	SkipReason   string `json:"skip_reason,omitempty"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "resolve <post-id>",
		Short: "Assign a featured image to one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid post id %q: %w", args[0], err)
			}
			uc, err := ctx.assignUseCase(cmd.Context())
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), featured.AssignInput{PostID: postID, DryRun: dryRun})
			if err != nil {
				return err
			}

			res := resolveResult{
				PostID:     postID.String(),
				Assigned:   out.Assigned,
				Taxonomy:   string(out.Taxonomy),
				Slug:       out.Slug,
				SkipReason: string(out.SkipReason),
			}
			if out.Taxonomy != "" {
				res.AttachmentID = out.AttachmentID.String()
			}
			return writeJSON(cmd, res)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve without writing the thumbnail")
	return cmd
}
