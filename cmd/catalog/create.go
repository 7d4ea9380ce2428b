package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gisdx/catalog-core/internal/application/handlers"
)

func newCreateCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "create <layer> <entity>...",
		Short: "Create catalog records for new entities",
		Long: "Synthesizes full catalog records for the given entity keys (e.g. fl_duval_jacksonville), " +
			"merging in values from the manual-overrides file. Records missing a mandatory field are " +
			"reported and recorded for manual completion, never inserted. Without --apply this is a dry run.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handlers.CreateOptions{Entities: args[1:], Apply: apply}
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.ReconcileHandler.Create(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				rep := result.Report

				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.AppendHeader(table.Row{"Entity", "Status", "Title"})
				for _, outcome := range rep.Outcomes {
					t.AppendRow(table.Row{outcome.Entity, outcome.Status, outcome.Record["title"]})
				}
				t.AppendFooter(table.Row{"", fmt.Sprintf("%d created, %d blocked, %d skipped",
					rep.Created, rep.Blocked, rep.Skipped), ""})
				t.SetStyle(table.StyleRounded)
				t.Render()

				if rep.Blocked > 0 {
					fmt.Printf("blocked entities recorded in %s; fill in values and rerun\n",
						d.Config.Catalog.ManualFile)
				}
				fmt.Printf("report written to %s\n", result.ReportPath)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Insert the synthesized records into the catalog")
	return cmd
}
