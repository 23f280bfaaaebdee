package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trinestudio/trine-server/internal/schema"
)

func newSchemaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [type]",
		Short: "Show CMS document types, or the fields of one type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				types := schema.All()
				rows := make([][]string, 0, len(types))
				for _, dt := range types {
					rows = append(rows, []string{dt.Name, dt.Title, fmt.Sprint(len(dt.Fields))})
				}
				return writeOutput(cmd, ctx, types,
					[]string{"Type", "Title", "Fields"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				)
			}

			dt, ok := schema.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown document type %q", args[0])
			}
			rows := make([][]string, 0, len(dt.Fields))
			for _, f := range dt.Fields {
				rows = append(rows, []string{f.Name, string(f.Type), f.Title, joinOrDash(f.To)})
			}
			return writeOutput(cmd, ctx, dt,
				[]string{"Field", "Type", "Title", "References"},
				rows,
				nil,
			)
		},
	}
}
