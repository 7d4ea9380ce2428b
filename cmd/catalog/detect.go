package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gisdx/catalog-core/internal/domain/services"
)

func newDetectCmd() *cobra.Command {
	var include, exclude []string

	cmd := &cobra.Command{
		Use:   "detect <layer>",
		Short: "Detect duplicate entities in a layer",
		Long:  "Groups the layer's catalog records by entity key and reports unique entities, duplicate groups and unparseable records. Read-only.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := services.EntityFilter{Include: include, Exclude: exclude}
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.ReconcileHandler.Detect(cmd.Context(), args[0], filter)
				if err != nil {
					return err
				}
				rep := result.Report

				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.AppendHeader(table.Row{"Classification", "Count"})
				t.AppendRow(table.Row{"unique", len(rep.Unique)})
				t.AppendRow(table.Row{"duplicate groups", len(rep.Duplicates)})
				t.AppendRow(table.Row{"errors", len(rep.Errors)})
				t.AppendFooter(table.Row{"total records", rep.Total})
				t.SetStyle(table.StyleRounded)
				t.Render()

				for _, group := range rep.Duplicates {
					fmt.Printf("duplicate: %s (%d records)\n", group.Entity, len(group.Records))
					for _, row := range group.Records {
						fmt.Printf("  - %s\n", row.Values["title"])
					}
				}
				for _, row := range rep.Errors {
					fmt.Printf("unparseable: %s\n", row.Values["title"])
				}

				fmt.Printf("report written to %s\n", result.ReportPath)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "Only process entities containing any of these substrings")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Skip entities containing any of these substrings")
	return cmd
}
