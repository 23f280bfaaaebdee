package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trinestudio/trine-server/internal/genre"
	"github.com/trinestudio/trine-server/internal/search"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var types []string
	var genres string
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search artists and releases",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := ctx.searchIndex()
			if err != nil {
				return err
			}

			params := search.DefaultSearchParams()
			params.Limit = limit
			params.Highlight = false
			params.IncludeFacets = false
			if len(args) == 1 {
				params.Query = strings.TrimSpace(args[0])
			}
			for _, t := range types {
				switch t {
				case string(search.DocTypeArtist), string(search.DocTypeRelease):
					params.Types = append(params.Types, t)
				default:
					return fmt.Errorf("unknown type %q (must be artist or release)", t)
				}
			}
			if genres != "" {
				params.GenreSlugs = genre.NormalizeToSlugs(genres)
			}

			result, err := index.Search(cmd.Context(), params)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Hits))
			for _, hit := range result.Hits {
				rows = append(rows, []string{
					string(hit.Type),
					hit.ID,
					hit.Name,
					hit.ArtistName,
					strconv.FormatFloat(hit.Score, 'f', 3, 64),
				})
			}
			if !ctx.jsonOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "%d match(es) in %dms\n", result.Total, result.TookMs)
			}
			return writeOutput(cmd, ctx, result,
				[]string{"Type", "ID", "Name", "Artist", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			)
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "Restrict to artist or release (repeatable)")
	cmd.Flags().StringVar(&genres, "genre", "", "Genre labels, comma-separated")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of hits")
	return cmd
}
