package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wols/internal/archive"
	"wols/internal/labelsink"
	"wols/internal/labelsvc"
)

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect the label issuance archive",
	}

	archiveCmd.AddCommand(newArchiveListCommand(ctx))
	archiveCmd.AddCommand(newArchiveHistoryCommand(ctx))
	archiveCmd.AddCommand(newArchiveURLCommand(ctx))

	return archiveCmd
}

func newArchiveListCommand(cctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent label issuances",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withService(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, svc *labelsvc.Service, _ labelsink.Store) error {
				items, err := svc.Recent(ctx, limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}
				printIssuances(cmd, items)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum issuances to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit issuances as JSON")
	return cmd
}

func newArchiveHistoryCommand(cctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <specimen-id>",
		Short: "List every label issued for one specimen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withService(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, svc *labelsvc.Service, _ labelsink.Store) error {
				items, err := svc.History(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}
				printIssuances(cmd, items)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit issuances as JSON")
	return cmd
}

func newArchiveURLCommand(cctx *commandContext) *cobra.Command {
	var expiry time.Duration

	cmd := &cobra.Command{
		Use:   "url <artifact-key>",
		Short: "Presign a download URL for a stored label artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withService(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, svc *labelsvc.Service, _ labelsink.Store) error {
				url, err := svc.ArtifactURL(ctx, args[0], expiry)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&expiry, "expiry", 15*time.Minute, "How long the URL stays valid")
	return cmd
}

func printIssuances(cmd *cobra.Command, items []archive.Issuance) {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No issuances recorded")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, iss := range items {
		rows = append(rows, []string{
			iss.IssuedAt.Format(time.RFC3339),
			iss.SpecimenID,
			iss.Species,
			iss.Format,
			iss.ArtifactKey,
		})
	}
	if terminalWriter(out) {
		fmt.Fprintln(out, renderTable([]string{"ISSUED", "SPECIMEN", "SPECIES", "FORMAT", "ARTIFACT"}, rows, nil))
		return
	}
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, "\t"))
	}
}
