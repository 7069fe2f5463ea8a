package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wols/pkg/wols"
)

const passwordEnvVar = "WOLS_PASSWORD"

func newEncryptCommand() *cobra.Command {
	var (
		password   string
		iterations int
		fields     []string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "encrypt [file]",
		Short: "Encrypt a record whole or field-by-field into AES-GCM envelopes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := resolvePassword(password)
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
			opts := wols.EncryptOptions{Password: pw, Iterations: iterations, Fields: fields}
			var result any
			if len(fields) == 0 {
				env, err := wols.EncryptSpecimen(s, opts)
				if err != nil {
					return err
				}
				result = env
			} else {
				hybrid, err := wols.EncryptSpecimenFields(s, opts)
				if err != nil {
					return err
				}
				result = hybrid
			}
			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode envelope: %w", err)
			}
			return writeDocument(cmd, output, string(encoded))
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Encryption password (falls back to $"+passwordEnvVar+")")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "PBKDF2 iteration count (0 selects the default)")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Encrypt only these top-level fields")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")
	return cmd
}

func newDecryptCommand() *cobra.Command {
	var (
		password   string
		iterations int
		output     string
	)

	cmd := &cobra.Command{
		Use:   "decrypt [file]",
		Short: "Decrypt an envelope or a field-encrypted record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := resolvePassword(password)
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
			var doc map[string]any
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("decode %s: %w", displayName(path), err)
			}

			opts := wols.DecryptOptions{Password: pw, Iterations: iterations}
			var s wols.Specimen
			if isEnvelope(doc) {
				var env wols.Envelope
				if err := json.Unmarshal(data, &env); err != nil {
					return fmt.Errorf("decode %s: %w", displayName(path), err)
				}
				s, err = wols.DecryptSpecimen(&env, opts)
			} else {
				s, err = wols.DecryptSpecimenFields(doc, opts)
			}
			if err != nil {
				return err
			}
			wire, err := wols.SerializeSpecimen(s)
			if err != nil {
				return err
			}
			return writeDocument(cmd, output, wire)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Decryption password (falls back to $"+passwordEnvVar+")")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "PBKDF2 iteration count when the envelope does not record one")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the record to a file instead of stdout")
	return cmd
}

// isEnvelope distinguishes a whole-record envelope from a field-encrypted
// hybrid: only envelopes carry the ciphertext payload at the top level.
func isEnvelope(doc map[string]any) bool {
	encrypted, _ := doc["encrypted"].(bool)
	_, hasPayload := doc["payload"].(string)
	return encrypted && hasPayload
}

// resolvePassword takes the flag value or the environment fallback. An empty
// password is refused before any key derivation runs.
func resolvePassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(passwordEnvVar); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("a password is required: pass --password or set %s", passwordEnvVar)
}
