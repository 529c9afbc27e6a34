package main

import (
	"time"

	"github.com/couchcryptid/storm-track-ingest/internal/catalog"
	"github.com/couchcryptid/storm-track-ingest/internal/observability"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newLookupCommand() *cobra.Command {
	var (
		indexURL string
		basin    string
		number   int
		year     int
	)

	cmd := &cobra.Command{
		Use:   "lookup [name...]",
		Short: "Resolve storms against the NHC storm catalog",
		Long: "Resolves each given storm name (or a basin + number pair) to its ATCF\n" +
			"identifier using the published storm index.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.NewLogger("info", "text")
			metrics := observability.NewMetrics()
			cat := catalog.NewCached(
				catalog.NewClient(indexURL, 10*time.Second, logger, metrics),
				64, metrics,
			)

			queries := make([]catalog.Query, 0, len(args))
			for _, name := range args {
				queries = append(queries, catalog.Query{Name: name, Year: year})
			}
			if len(queries) == 0 {
				queries = append(queries, catalog.Query{Basin: basin, Number: number, Year: year})
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Name", "Year", "Source"})

			for _, q := range queries {
				storm, err := cat.Lookup(cmd.Context(), q)
				if err != nil {
					return err
				}
				t.AppendRow(table.Row{storm.ID, storm.Name, storm.Year, storm.Source})
			}

			style := table.StyleLight
			style.Options.DrawBorder = false
			t.SetStyle(style)
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&indexURL, "index-url", catalog.DefaultIndexURL, "Storm index URL")
	cmd.Flags().StringVar(&basin, "basin", "", "Basin code (e.g. AL), used when no name is given")
	cmd.Flags().IntVar(&number, "number", 0, "Storm number within the basin")
	cmd.Flags().IntVar(&year, "year", 0, "Season year filter")
	return cmd
}
