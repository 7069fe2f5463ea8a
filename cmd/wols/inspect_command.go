package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wols/pkg/label"
	"wols/pkg/wols"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Parse a specimen document and show its fields",
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
			if asJSON {
				return writeJSON(cmd, s)
			}
			rows := specimenRows(s)
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

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the record in canonical wire form instead")
	return cmd
}

// specimenRows flattens a record into field/value rows, wire field names as
// keys, absent fields skipped. The derived caption line comes last.
func specimenRows(s wols.Specimen) [][]string {
	rows := [][]string{
		{"id", s.ID.String()},
		{"version", s.Version},
		{"type", string(s.Type)},
		{"species", s.Species},
	}
	add := func(field, value string) {
		if value != "" {
			rows = append(rows, []string{field, value})
		}
	}
	if s.Strain != nil {
		add("strain", s.Strain.Name)
		if s.Strain.Generation != nil {
			add("strain.generation", *s.Strain.Generation)
		}
		if s.Strain.ClonalGeneration != nil {
			add("strain.clonalGeneration", strconv.Itoa(*s.Strain.ClonalGeneration))
		}
		if s.Strain.Lineage != nil {
			add("strain.lineage", *s.Strain.Lineage)
		}
		if s.Strain.Source != nil {
			add("strain.source", *s.Strain.Source)
		}
	}
	add("stage", string(s.Stage))
	add("created", s.Created)
	add("batch", s.Batch)
	add("organization", s.Organization)
	add("creator", s.Creator)
	if len(s.Custom) > 0 {
		add("custom", strconv.Itoa(len(s.Custom))+" field(s)")
	}
	if s.Signature != "" {
		add("signature", "(present)")
	}
	add("caption", label.Caption(s))
	return rows
}
