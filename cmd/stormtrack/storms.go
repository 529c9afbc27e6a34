package main

import (
	"fmt"
	"time"

	"github.com/couchcryptid/storm-track-ingest/internal/atcf"
	"github.com/couchcryptid/storm-track-ingest/internal/nhc"
	"github.com/couchcryptid/storm-track-ingest/internal/observability"
	"github.com/spf13/cobra"
)

func newStormsCommand() *cobra.Command {
	var (
		host string
		deck string
		mode string
		year int
	)

	cmd := &cobra.Command{
		Use:   "storms",
		Short: "List available storm IDs from the NHC deck listing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := observability.NewLogger("info", "text")
			client := nhc.NewClient(host, 30*time.Second, logger)

			ids, err := client.StormIDs(cmd.Context(), atcf.FileDeck(deck), atcf.Mode(mode), year)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", nhc.DefaultHost, "NHC FTP host")
	cmd.Flags().StringVar(&deck, "deck", string(atcf.DeckBest), "File deck: a|b")
	cmd.Flags().StringVar(&mode, "mode", string(atcf.ModeHistorical), "Deck location: historical|realtime")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Season year (historical mode)")
	return cmd
}
