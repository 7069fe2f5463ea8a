package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wols/pkg/wols"
)

func newEncodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode a specimen document as a compact label URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			s, err := readSpecimen(cmd, path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), wols.ToCompactURL(s))
			return nil
		},
	}
}

func newDecodeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode <url>",
		Short: "Decode a compact label URL back into its specimen fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := wols.ParseCompactURL(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, ref)
			}
			rows := refRows(ref)
			out := cmd.OutOrStdout()
			if terminalWriter(out) {
				fmt.Fprintln(out, renderTable([]string{"FIELD", "VALUE"}, rows, nil))
				return nil
			}
			for _, row := range rows {
				fmt.Fprintf(out, "%s\t%s\n", row[0], row[1])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the decoded reference as JSON")
	return cmd
}

// refRows flattens a decoded reference. The encoding is lossy, so absent
// fields are simply skipped rather than shown empty.
func refRows(ref wols.SpecimenRef) [][]string {
	rows := [][]string{
		{"id", ref.ID.String()},
		{"encoding", ref.Version},
	}
	add := func(field, value string) {
		if value != "" {
			rows = append(rows, []string{field, value})
		}
	}
	add("species", ref.Species)
	add("type", string(ref.Type))
	add("stage", string(ref.Stage))
	if ref.Timestamp != nil {
		add("timestamp", ref.Timestamp.Format(time.RFC3339))
	}
	add("batch", ref.Batch)
	add("strain", ref.StrainName)
	add("strain.generation", ref.StrainGeneration)
	return rows
}
