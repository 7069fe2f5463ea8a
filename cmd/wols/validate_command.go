package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wols/pkg/wols"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var (
		level        string
		idMode       string
		allowUnknown bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a specimen document and report every issue",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			var candidate any
			if err := json.Unmarshal(data, &candidate); err != nil {
				return fmt.Errorf("decode %s: %w", displayName(path), err)
			}

			opts := cfg.ValidateOptions()
			if cmd.Flags().Changed("level") {
				opts.Level = wols.Level(level)
			}
			if cmd.Flags().Changed("id-mode") {
				opts.IDMode = wols.IDMode(idMode)
			}
			if cmd.Flags().Changed("allow-unknown") {
				opts.AllowUnknownFields = allowUnknown
			}

			res := wols.ValidateSpecimen(candidate, opts)
			if asJSON {
				if err := writeJSON(cmd, res); err != nil {
					return err
				}
			} else {
				printValidationReport(cmd, res)
			}
			if !res.Valid {
				return fmt.Errorf("%s: %w", displayName(path), errDocumentInvalid)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Validation level: strict or lenient (default from config)")
	cmd.Flags().StringVar(&idMode, "id-mode", "", "Accepted id shape: strict, ulid, uuid, or any (default from config)")
	cmd.Flags().BoolVar(&allowUnknown, "allow-unknown", false, "Suppress unknown-field warnings")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw validation result as JSON")
	return cmd
}

func printValidationReport(cmd *cobra.Command, res wols.ValidationResult) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(res.Errors)+len(res.Warnings))
	for _, e := range res.Errors {
		rows = append(rows, []string{"error", e.Path, e.Code, e.Message})
	}
	for _, w := range res.Warnings {
		message := w.Message
		if w.Suggestion != "" {
			message += " (suggestion: " + w.Suggestion + ")"
		}
		rows = append(rows, []string{"warning", w.Path, w.Code, message})
	}
	if len(rows) > 0 {
		if terminalWriter(out) {
			fmt.Fprintln(out, renderTable([]string{"SEVERITY", "PATH", "CODE", "MESSAGE"}, rows, nil))
		} else {
			for _, row := range rows {
				fmt.Fprintln(out, strings.Join(row, "\t"))
			}
		}
	}
	switch {
	case res.Valid && len(res.Warnings) == 0:
		fmt.Fprintln(out, "Document is valid")
	case res.Valid:
		fmt.Fprintf(out, "Document is valid with %d warning(s)\n", len(res.Warnings))
	default:
		fmt.Fprintf(out, "Document is invalid: %d error(s), %d warning(s)\n", len(res.Errors), len(res.Warnings))
	}
}
