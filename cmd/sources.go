package cmd

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func sourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage publisher source configurations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the configured publisher sources",
		RunE:  runSourcesList,
	})

	return cmd
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	configs := app.registry.Configs()
	if len(configs) == 0 {
		app.log.Info("no sources configured")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Hosts", "Listing URL", "Container", "Links"})

	for _, cfg := range configs {
		t.AppendRow(table.Row{
			cfg.Name,
			strings.Join(cfg.Hosts, ", "),
			cfg.ListingURL,
			cfg.Selectors.Container,
			cfg.Selectors.Links,
		})
	}
	t.Render()

	return nil
}
