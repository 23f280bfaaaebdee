package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newDraftsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Inspect persisted submission drafts",
	}
	cmd.AddCommand(newDraftsListCommand(ctx))
	cmd.AddCommand(newDraftsDeleteCommand(ctx))
	return cmd
}

func newDraftsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := ctx.draftStore()
			if err != nil {
				return err
			}
			list, err := drafts.ListDrafts(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(list))
			for _, d := range list {
				name := d.Session.Submission.Identity.ArtistName
				if name == "" {
					name = "-"
				}
				rows = append(rows, []string{
					d.Session.ID,
					string(d.Session.State),
					strconv.Itoa(d.Session.Step),
					name,
					d.SavedAt.Local().Format(time.DateTime),
				})
			}
			return writeOutput(cmd, ctx, list,
				[]string{"Session", "State", "Step", "Artist", "Saved"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			)
		},
	}
}

func newDraftsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a saved draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := ctx.draftStore()
			if err != nil {
				return err
			}
			if err := drafts.DeleteDraft(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted draft %s\n", args[0])
			return nil
		},
	}
}
