package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stormtrack",
		Short: "ATCF storm-track ingestion service and tooling",
		Long: "stormtrack ingests ATCF advisory decks from the National Hurricane Center,\n" +
			"decodes them into structured records, and publishes them to the configured sinks.\n" +
			"It also bundles local tooling for decoding deck files and browsing the storm catalog.",
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newDecodeCommand())
	rootCmd.AddCommand(newStormsCommand())
	rootCmd.AddCommand(newLookupCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
