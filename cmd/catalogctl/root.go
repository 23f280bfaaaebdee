package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Inspect the TRINE catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.close()
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.backend, "backend", "", "Catalog backend: fixture, sqlite or cms")
	flags.StringVar(&ctx.fixturePath, "fixture", "", "YAML fixture overriding the embedded catalog")
	flags.StringVar(&ctx.dbPath, "db", "", "SQLite catalog path")
	flags.StringVar(&ctx.dataPath, "data-path", "", "Base path for on-disk state")
	flags.StringVar(&ctx.envFile, "env-file", ".env", "Path to .env file")
	flags.BoolVar(&ctx.jsonOutput, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(newArtistsCommand(ctx))
	rootCmd.AddCommand(newReleasesCommand(ctx))
	rootCmd.AddCommand(newGenresCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newDraftsCommand(ctx))
	rootCmd.AddCommand(newSchemaCommand(ctx))

	return rootCmd
}
