package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wols/pkg/wols"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		id           string
		specimenType string
		species      string
		strainName   string
		generation   string
		clonalGen    int
		lineage      string
		source       string
		stage        string
		created      string
		batch        string
		organization string
		creator      string
		custom       map[string]string
		signature    string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new specimen record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			strain, err := buildStrain(cmd, strainName, generation, clonalGen, lineage, source)
			if err != nil {
				return err
			}
			if created == "" && !cmd.Flags().Changed("created") {
				created = time.Now().UTC().Format(time.RFC3339)
			}
			input := wols.CreateInput{
				ID:           id,
				Type:         specimenType,
				Species:      species,
				Strain:       strain,
				Stage:        stage,
				Created:      created,
				Batch:        batch,
				Organization: organization,
				Creator:      creator,
				Signature:    signature,
			}
			if len(custom) > 0 {
				input.Custom = make(map[string]any, len(custom))
				for k, v := range custom {
					input.Custom[k] = v
				}
			}
			s, err := wols.CreateSpecimen(input)
			if err != nil {
				return err
			}
			if res := wols.ValidateSpecimen(s, cfg.ValidateOptions()); !res.Valid {
				return refuseInvalid(res)
			}
			wire, err := wols.SerializeSpecimen(s)
			if err != nil {
				return err
			}
			return writeDocument(cmd, output, wire)
		},
	}

	cmd.Flags().StringVarP(&specimenType, "type", "t", "", "Specimen type (canonical, alias, or platform label)")
	cmd.Flags().StringVarP(&species, "species", "s", "", "Species binomial or common name")
	cmd.Flags().StringVar(&strainName, "strain", "", "Strain name")
	cmd.Flags().StringVar(&generation, "generation", "", "Strain generation (P or F<n>)")
	cmd.Flags().IntVar(&clonalGen, "clonal-generation", 0, "Clonal transfer count")
	cmd.Flags().StringVar(&lineage, "lineage", "", "Parent specimen id")
	cmd.Flags().StringVar(&source, "source", "", "Strain acquisition source")
	cmd.Flags().StringVar(&stage, "stage", "", "Lifecycle stage")
	cmd.Flags().StringVar(&created, "created", "", "Creation timestamp, RFC 3339 (defaults to now)")
	cmd.Flags().StringVarP(&batch, "batch", "b", "", "Batch or lot identifier")
	cmd.Flags().StringVar(&organization, "organization", "", "Issuing organization")
	cmd.Flags().StringVar(&creator, "creator", "", "Record creator")
	cmd.Flags().StringToStringVar(&custom, "custom", nil, "Custom field as key=value (repeatable)")
	cmd.Flags().StringVar(&signature, "signature", "", "Detached record signature")
	cmd.Flags().StringVar(&id, "id", "", "Explicit specimen id (defaults to a generated one)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the record to a file instead of stdout")

	return cmd
}

// buildStrain assembles the strain input: a bare name stays a string, any
// sub-field upgrades it to the object form.
func buildStrain(cmd *cobra.Command, name, generation string, clonal int, lineage, source string) (any, error) {
	flagSet := func(f string) bool { return cmd.Flags().Changed(f) }
	hasSub := flagSet("generation") || flagSet("clonal-generation") || flagSet("lineage") || flagSet("source")
	if name == "" {
		if hasSub {
			return nil, fmt.Errorf("strain sub-fields require --strain")
		}
		return nil, nil
	}
	if !hasSub {
		return name, nil
	}
	strain := wols.Strain{Name: name}
	if flagSet("generation") {
		strain.Generation = &generation
	}
	if flagSet("clonal-generation") {
		strain.ClonalGeneration = &clonal
	}
	if flagSet("lineage") {
		strain.Lineage = &lineage
	}
	if flagSet("source") {
		strain.Source = &source
	}
	return strain, nil
}
