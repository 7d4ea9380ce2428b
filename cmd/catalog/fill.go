package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gisdx/catalog-core/internal/application/handlers"
	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/services"
)

func newFillCmd() *cobra.Command {
	var include, exclude []string
	var allFields, applyAuto, applyManual bool

	cmd := &cobra.Command{
		Use:   "fill <layer>",
		Short: "Health-check and correct a layer's catalog fields",
		Long: "Checks every tracked field of the layer's unique entities against its derived expected value. " +
			"Without --apply flags this is a dry run; corrections land in the report and the manual-overrides file only.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handlers.FillOptions{
				Filter:      services.EntityFilter{Include: include, Exclude: exclude},
				AllFields:   allFields,
				ApplyAuto:   applyAuto,
				ApplyManual: applyManual,
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.ReconcileHandler.Fill(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				rep := result.Report

				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.AppendHeader(table.Row{"Field", "Healthy"})
				for _, field := range rep.Headers[1:] {
					if field == "og_title" {
						continue
					}
					t.AppendRow(table.Row{field, fmt.Sprintf("%d/%d", rep.HealthyCounts[field], len(rep.Rows))})
				}
				t.AppendFooter(table.Row{"skipped (duplicate/error)", rep.Skipped})
				t.SetStyle(table.StyleRounded)
				t.Render()

				manual := 0
				for _, row := range rep.Rows {
					for _, check := range row.Cells {
						if check.Status == entities.FieldManualRequired {
							manual++
						}
					}
				}
				if manual > 0 {
					fmt.Printf("%d fields need manual values; see %s\n", manual, d.Config.Catalog.ManualFile)
				}
				if result.Committed {
					fmt.Printf("applied %d auto and %d manual corrections\n",
						result.Stats.AppliedAuto, result.Stats.AppliedManual)
				}
				fmt.Printf("report written to %s\n", result.ReportPath)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "Only process entities containing any of these substrings")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Skip entities containing any of these substrings")
	cmd.Flags().BoolVar(&allFields, "all", false, "Also check the optional field set (sub_category, source_org, format_subtype)")
	cmd.Flags().BoolVar(&applyAuto, "apply", false, "Write derived corrections to the catalog")
	cmd.Flags().BoolVar(&applyManual, "apply-manual", false, "Write manual-class corrections to the catalog")
	return cmd
}
