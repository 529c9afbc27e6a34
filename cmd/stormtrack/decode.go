package main

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/storm-track-ingest/internal/atcf"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newDecodeCommand() *cobra.Command {
	var recordTypes []string

	cmd := &cobra.Command{
		Use:   "decode <path>",
		Short: "Decode a local ATCF deck file and print the track",
		Long: "Decodes an ATCF deck file (plain or gzipped) into advisory records and\n" +
			"prints them as a table. Use \"-\" to read from standard input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args[0], recordTypes)
		},
	}

	cmd.Flags().StringSliceVar(&recordTypes, "record-type", nil, "Keep only these record types (e.g. BEST, OFCL); repeatable")
	return cmd
}

func runDecode(cmd *cobra.Command, path string, recordTypes []string) error {
	var src atcf.Source
	if path == "-" {
		src = atcf.BytesSource(cmd.InOrStdin())
	} else {
		src = atcf.PathSource(path)
	}

	var opts []atcf.ReadOption
	if len(recordTypes) > 0 {
		opts = append(opts, atcf.WithRecordTypes(recordTypes...))
	}

	track, err := atcf.ReadTrack(src, opts...)
	if err != nil {
		return err
	}

	renderTrack(cmd, track)
	fmt.Fprintf(cmd.OutOrStdout(), "%d record(s)\n", len(track))
	return nil
}

func renderTrack(cmd *cobra.Command, track atcf.Table) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Time", "Type", "Lat", "Lon", "Wind", "Pressure", "Isotach", "Dev", "Name"})

	for _, rec := range track {
		t.AppendRow(table.Row{
			rec.Datetime.Format("2006-01-02 15:04"),
			rec.RecordType,
			strconv.FormatFloat(rec.Latitude, 'f', -1, 64),
			strconv.FormatFloat(rec.Longitude, 'f', -1, 64),
			quantityCell(rec.MaxWind()),
			quantityCell(rec.Pressure()),
			rec.IsotachWind().String(),
			rec.DevelopmentLevel,
			rec.Name,
		})
	}

	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}

func quantityCell(q atcf.Quantity, ok bool) string {
	if !ok {
		return "-"
	}
	return q.String()
}
