package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"wols/pkg/wols"
)

func newMigrateCommand() *cobra.Command {
	var (
		check  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "migrate [file]",
		Short: "Upgrade an outdated record to the current standard version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			var record map[string]any
			if err := json.Unmarshal(data, &record); err != nil {
				return fmt.Errorf("decode %s: %w", displayName(path), err)
			}

			if check {
				version, _ := record["version"].(string)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Record version: %s\n", version)
				fmt.Fprintf(out, "Current version: %s\n", wols.CurrentVersion)
				fmt.Fprintf(out, "Migratable: %s\n", yesNo(wols.CanMigrate(record)))
				return nil
			}

			migrated, err := wols.Migrate(record)
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(migrated, "", "  ")
			if err != nil {
				return fmt.Errorf("encode migrated record: %w", err)
			}
			return writeDocument(cmd, output, string(encoded))
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report whether a migration path exists without applying it")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the migrated record to a file instead of stdout")
	return cmd
}
