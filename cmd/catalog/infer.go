package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gisdx/catalog-core/internal/domain/services"
)

func newInferCmd() *cobra.Command {
	var include, exclude []string
	var all, apply bool

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer field transforms from catalog-wide aliases",
		Long: "Builds an alias index from every valid fields_obj_transform in the catalog and proposes " +
			"transforms for records lacking one. A proposal is accepted only when each target field has " +
			"exactly one unclaimed match; anything ambiguous is reported, not guessed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := services.InferOptions{
				Include:         include,
				Exclude:         exclude,
				RestrictMissing: !all,
				Apply:           apply,
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.InferHandler.Handle(cmd.Context(), opts)
				if err != nil {
					return err
				}
				rep := result.Report

				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.AppendHeader(table.Row{"Entity", "Confidence", "Proposed"})
				for _, row := range rep.Rows {
					t.AppendRow(table.Row{row.Entity, row.Confidence, row.Proposed})
				}
				t.AppendFooter(table.Row{"", fmt.Sprintf("%d processed", rep.Processed),
					fmt.Sprintf("%d updated", rep.Updated)})
				t.SetStyle(table.StyleRounded)
				t.Render()

				fmt.Printf("report written to %s\n", result.ReportPath)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "Only process entities matching any of these glob patterns")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Skip entities matching any of these glob patterns")
	cmd.Flags().BoolVar(&all, "all", false, "Also re-check records that already carry a transform")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write unique-confidence proposals to the catalog")
	return cmd
}
