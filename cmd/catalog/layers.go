package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/naming"
)

func newLayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List the known catalog layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Layer", "Display Name", "Level", "Category", "Group"})
			for _, name := range entities.LayerNames() {
				layer, _ := entities.LayerByName(name)
				t.AppendRow(table.Row{
					layer.Name,
					naming.Format(layer.Name, naming.KindLayer, true),
					string(layer.Level),
					layer.Category,
					layer.Group,
				})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}
