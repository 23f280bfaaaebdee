package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trinestudio/trine-server/internal/catalog"
)

func newArtistsCommand(ctx *commandContext) *cobra.Command {
	var genre string
	var featured bool
	var limit int

	cmd := &cobra.Command{
		Use:   "artists",
		Short: "List artists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.catalog()
			if err != nil {
				return err
			}
			filter := catalog.ArtistFilter{Genre: genre, Limit: limit}
			if cmd.Flags().Changed("featured") {
				filter.Featured = &featured
			}
			artists, err := svc.ListArtists(cmd.Context(), filter)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(artists))
			for _, a := range artists {
				rows = append(rows, []string{
					a.ID,
					a.Name,
					a.Genre,
					yesNo(a.Featured),
					strconv.Itoa(len(a.Releases)),
				})
			}
			return writeOutput(cmd, ctx, artists,
				[]string{"ID", "Name", "Genre", "Featured", "Releases"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			)
		},
	}

	cmd.Flags().StringVar(&genre, "genre", "", "Genre substring, case-insensitive")
	cmd.Flags().BoolVar(&featured, "featured", false, "Only featured (or, with =false, non-featured) artists")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of artists")
	return cmd
}

func newReleasesCommand(ctx *commandContext) *cobra.Command {
	var filter catalog.ReleaseFilter
	var featured bool

	cmd := &cobra.Command{
		Use:   "releases",
		Short: "List releases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.catalog()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("featured") {
				filter.Featured = &featured
			}
			releases, err := svc.ListReleases(cmd.Context(), filter)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(releases))
			for _, r := range releases {
				date := ""
				if !r.ReleaseDate.IsZero() {
					date = r.ReleaseDate.Format(time.DateOnly)
				}
				rows = append(rows, []string{
					r.ID,
					r.Title,
					r.ArtistName,
					string(r.Type),
					date,
					strconv.Itoa(len(r.Tracks)),
				})
			}
			return writeOutput(cmd, ctx, releases,
				[]string{"ID", "Title", "Artist", "Type", "Released", "Tracks"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			)
		},
	}

	cmd.Flags().StringVar(&filter.Type, "type", "", "Release type (Single, EP, LP, Album)")
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "Genre substring, case-insensitive")
	cmd.Flags().StringVar(&filter.Artist, "artist", "", "Artist name substring, case-insensitive")
	cmd.Flags().BoolVar(&featured, "featured", false, "Only featured (or, with =false, non-featured) releases")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of releases")
	return cmd
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List distinct artist and release genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.catalog()
			if err != nil {
				return err
			}
			artistGenres, err := svc.ListArtistGenres(cmd.Context())
			if err != nil {
				return err
			}
			releaseGenres, err := svc.ListReleaseGenres(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(artistGenres)+len(releaseGenres))
			for _, g := range artistGenres {
				rows = append(rows, []string{"artist", g})
			}
			for _, g := range releaseGenres {
				rows = append(rows, []string{"release", g})
			}
			return writeOutput(cmd, ctx,
				map[string][]string{"artists": artistGenres, "releases": releaseGenres},
				[]string{"Kind", "Genre"},
				rows,
				nil,
			)
		},
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
