package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wols/internal/labelsink"
	"wols/internal/labelsvc"
	"wols/pkg/label"
	"wols/pkg/wols"
)

func newQRCommand(ctx *commandContext) *cobra.Command {
	var (
		output   string
		format   string
		size     int
		level    string
		noBorder bool
		issue    bool
	)

	cmd := &cobra.Command{
		Use:   "qr [file]",
		Short: "Render a specimen document as a QR label",
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
			s, err := readSpecimen(cmd, path)
			if err != nil {
				return err
			}
			if res := wols.ValidateSpecimen(s, cfg.ValidateOptions()); !res.Valid {
				return refuseInvalid(res)
			}

			opts := cfg.LabelOptions()
			if cmd.Flags().Changed("format") {
				opts.Format = label.PayloadFormat(format)
			}
			if cmd.Flags().Changed("size") {
				opts.Size = size
			}
			if cmd.Flags().Changed("level") {
				opts.Level = level
			}
			if cmd.Flags().Changed("no-border") {
				opts.DisableBorder = noBorder
			}

			if issue {
				return issueLabel(cmd, ctx, s, opts, output)
			}

			png, err := label.Render(s, opts)
			if err != nil {
				return err
			}
			target := output
			if target == "" {
				target = s.ID.Suffix() + ".png"
			}
			if err := os.WriteFile(target, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote label to %s (%d bytes)\n", target, len(png))
			if caption := label.Caption(s); caption != "" {
				fmt.Fprintf(out, "Caption: %s\n", caption)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG destination (default <id suffix>.png)")
	cmd.Flags().StringVar(&format, "format", "", "Payload format: compact or embedded (default from config)")
	cmd.Flags().IntVar(&size, "size", 0, "Edge length in pixels (default from config)")
	cmd.Flags().StringVar(&level, "level", "", "Error recovery level: L, M, Q, or H (default from config)")
	cmd.Flags().BoolVar(&noBorder, "no-border", false, "Drop the quiet-zone border")
	cmd.Flags().BoolVar(&issue, "issue", false, "Store the label in the configured sink and record the issuance")
	return cmd
}

// issueLabel routes rendering through the label service so the artifact
// lands in the configured sink and the archive gets a row. With --output the
// stored artifact is additionally copied to a local file.
func issueLabel(cmd *cobra.Command, cctx *commandContext, s wols.Specimen, opts label.Options, output string) error {
	return cctx.withService(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, svc *labelsvc.Service, sink labelsink.Store) error {
		issued, err := svc.Issue(ctx, s, opts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Issued label %s\n", issued.Issuance.ID)
		fmt.Fprintf(out, "Artifact: %s (%d bytes)\n", issued.Artifact.Key, issued.Artifact.Size)
		if issued.Caption != "" {
			fmt.Fprintf(out, "Caption: %s\n", issued.Caption)
		}
		if output == "" {
			return nil
		}
		_, rc, err := sink.Get(ctx, issued.Artifact.Key)
		if err != nil {
			return fmt.Errorf("fetch stored artifact: %w", err)
		}
		defer rc.Close()
		png, err := io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("fetch stored artifact: %w", err)
		}
		if err := os.WriteFile(output, png, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		fmt.Fprintf(out, "Wrote label to %s\n", output)
		return nil
	})
}
